package domain

import "time"

// NotificationItem is a read-only feed entry. The client never mutates
// these; dismissal is purely local.
type NotificationItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	ImageURL *string   `json:"imageUrl,omitempty"`
	DeepLink *string   `json:"deepLink,omitempty"`
	SentAt   time.Time `json:"sentAt"`
}
