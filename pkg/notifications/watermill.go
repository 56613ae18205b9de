package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topic is the watermill topic notifications are published on.
const Topic = "hireflow.notifications"

// KindMetadataKey carries the notification kind in message metadata so
// subscribers can route without decoding the payload.
const KindMetadataKey = "notification_kind"

// WatermillDispatcher publishes notifications onto a watermill publisher.
type WatermillDispatcher struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

// NewWatermillDispatcher wraps an existing publisher/subscriber pair.
func NewWatermillDispatcher(pub message.Publisher, sub message.Subscriber) *WatermillDispatcher {
	return &WatermillDispatcher{publisher: pub, subscriber: sub}
}

// NewGoChannelDispatcher creates an in-process dispatcher backed by
// watermill's GoChannel pub/sub. This is the default for single-process
// deployments and tests; delivery workers subscribe in the same process.
func NewGoChannelDispatcher(logger *slog.Logger) *WatermillDispatcher {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            1000,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewSlogLogger(logger),
	)

	return &WatermillDispatcher{publisher: pubSub, subscriber: pubSub}
}

// Dispatch publishes one notification. Callers treat a returned error as
// log-and-continue.
func (d *WatermillDispatcher) Dispatch(_ context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+watermill.NewULID(), payload)
	msg.Metadata.Set(KindMetadataKey, string(notification.Kind))

	return d.publisher.Publish(Topic, msg)
}

// Subscribe exposes the raw message stream for delivery workers.
func (d *WatermillDispatcher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return d.subscriber.Subscribe(ctx, Topic)
}

// Close shuts down the underlying publisher.
func (d *WatermillDispatcher) Close() error {
	return d.publisher.Close()
}
