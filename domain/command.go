package domain

// Command is anything the service executes against a chat.
type Command interface {
	Chat() string
}

// FetchPageCommand asks for one page of history, newest first.
// A nil Cursor means "start from the most recent message".
type FetchPageCommand struct {
	ChatID string
	Cursor *string
	Limit  int
}

func (c FetchPageCommand) Chat() string {
	return c.ChatID
}

// RetryCommand asks the backend to re-attempt delivery of a failed message.
type RetryCommand struct {
	MessageID string
	ChatID    string
	UserID    string
}

func (c RetryCommand) Chat() string {
	return c.ChatID
}
