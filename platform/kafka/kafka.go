package kafka

import (
	"context"
)

type (
	// Middleware wraps a MessageHandler with cross-cutting behavior.
	Middleware func(next MessageHandler) MessageHandler
	// MessageHandler processes a single consumed message. Returning an error
	// leaves the offset unmarked so the broker redelivers the message.
	MessageHandler func(ctx context.Context, msg Message) error
)

type Consumer interface {
	Consume(ctx context.Context, handler MessageHandler) error
}

type Producer interface {
	Send(ctx context.Context, key, value []byte) error
}
