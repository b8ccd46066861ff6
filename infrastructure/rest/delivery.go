package rest

import (
	"context"

	"teamchat/domain"
)

// Deliverer is the downstream transport (push gateway, SMTP bridge...)
// the retry handler hands a message to. A nil error means delivered.
type Deliverer interface {
	Deliver(ctx context.Context, message domain.Message) error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, message domain.Message) error

func (f DelivererFunc) Deliver(ctx context.Context, message domain.Message) error {
	return f(ctx, message)
}
