package notify

import (
	"context"
	"sync"

	"github.com/Domenick1991/expertbooking/internal/metrics"
	"go.uber.org/zap"
)

// Sink receives events from the dispatcher. Deliver runs on the sink's own
// goroutine, so a slow sink only delays itself.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
}

type queue struct {
	sink Sink
	ch   chan Event
}

// Dispatcher decouples event producers from delivery. Publish never blocks:
// when a sink's buffer is full the event is dropped for that sink.
type Dispatcher struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	queues  []queue
}

func NewDispatcher(log *zap.Logger, m *metrics.Metrics, buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	d := &Dispatcher{log: log, metrics: m}
	for _, s := range sinks {
		d.queues = append(d.queues, queue{sink: s, ch: make(chan Event, buffer)})
	}
	return d
}

func (d *Dispatcher) Publish(ev Event) {
	for _, q := range d.queues {
		select {
		case q.ch <- ev:
		default:
			d.metrics.IncDropped(q.sink.Name())
			d.log.Warn("sink buffer full, dropping event",
				zap.String("sink", q.sink.Name()),
				zap.String("type", string(ev.Type)),
				zap.Stringer("booking_id", ev.Booking.ID))
		}
	}
}

// Run delivers queued events until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, q := range d.queues {
		wg.Add(1)
		go func(q queue) {
			defer wg.Done()
			d.drain(ctx, q)
		}(q)
	}
	wg.Wait()
	return ctx.Err()
}

func (d *Dispatcher) drain(ctx context.Context, q queue) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q.ch:
			if err := q.sink.Deliver(ctx, ev); err != nil {
				d.log.Warn("event delivery failed",
					zap.String("sink", q.sink.Name()),
					zap.String("type", string(ev.Type)),
					zap.Stringer("booking_id", ev.Booking.ID),
					zap.Error(err))
			}
		}
	}
}
