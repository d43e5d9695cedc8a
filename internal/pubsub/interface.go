package pubsub

import "context"

// PubSubClient publishes events to downstream consumers.
type PubSubClient interface {
	SendMessage(ctx context.Context, topic EventType, data any) error
	Close() error
}
