//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"teamchat/domain"
)

// IChatAPI is the transport boundary towards the backend.
// All calls are request/response over the network and honor ctx.
type IChatAPI interface {
	// GetMessages returns one page of history for a chat, newest first,
	// plus the cursor positioning the next (older) page. A nil cursor in
	// the result means the end of history was reached.
	GetMessages(ctx context.Context, chatID string, cursor *string, limit int) ([]domain.Message, *string, error)
	// RetryMessage re-attempts delivery of a failed message and returns
	// the updated message.
	RetryMessage(ctx context.Context, cmd domain.RetryCommand) (domain.Message, error)
	// ListChats returns the caller's accessible chats.
	ListChats(ctx context.Context) ([]domain.Chat, error)
	// GetFeed returns recent notifications, server order unspecified.
	GetFeed(ctx context.Context, unreadOnly bool) ([]domain.NotificationItem, error)
}

// IFeedSink receives the merged notification view after each poll cycle.
type IFeedSink interface {
	Consume(ctx context.Context, items []domain.NotificationItem) error
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
