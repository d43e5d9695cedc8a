package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a Cloud Pub/Sub client. With an empty projectID events are dropped
// by a no-op client.
func New(ctx context.Context, projectID string) (PubSubClient, error) {
	if projectID == "" {
		log.Info("GCP_PROJECT not set, match events will not be published")
		return noop{}, nil
	}
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	teardown := func() {
		pubSubC.Close()
	}

	return &client{
		client:   pubSubC,
		teardown: teardown,
	}, nil
}

func (c *client) SendMessage(ctx context.Context, topic EventType, data any) error {
	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	message := &pubsub.Message{
		Data:       msgpackData,
		Attributes: map[string]string{"content-type": "application/msgpack"},
	}
	result := c.client.Topic(string(topic)).Publish(ctx, message)
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Info("SendMessage", "serverID", serverID, "topic", topic)
	return nil
}

func (c *client) Close() error {
	c.teardown()
	return nil
}

type noop struct{}

func (noop) SendMessage(ctx context.Context, topic EventType, data any) error {
	log.Debug("Pub/Sub disabled, dropping event", "topic", topic)
	return nil
}

func (noop) Close() error {
	return nil
}
