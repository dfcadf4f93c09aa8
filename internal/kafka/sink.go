package kafka

import (
	"context"

	"github.com/Domenick1991/expertbooking/internal/notify"
)

type publisher interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload any, maxRetries int) error
}

// EventSink forwards booking events to a topic, keyed by booking id so all
// events of one booking land on the same partition.
type EventSink struct {
	producer   publisher
	topic      string
	maxRetries int
}

func NewEventSink(producer publisher, topic string) *EventSink {
	return &EventSink{producer: producer, topic: topic, maxRetries: 3}
}

func (s *EventSink) Name() string { return "kafka" }

func (s *EventSink) Deliver(ctx context.Context, ev notify.Event) error {
	return s.producer.PublishWithRetry(ctx, s.topic, ev.Booking.ID.String(), NewBookingEvent(ev), s.maxRetries)
}

var _ notify.Sink = (*EventSink)(nil)
