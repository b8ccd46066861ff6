package domain

// Chat is the metadata needed to render a conversation header.
// Participants is a membership set; display order is whatever the
// backend returned, kept stable for rendering.
type Chat struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Participants []string `json:"participants"`
}

// HasParticipant reports membership of a user in the chat.
func (c Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
