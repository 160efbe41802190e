// Package events announces committed state changes. Publishing happens after
// the owning transaction commits and never affects its outcome.
package events

import (
	"context"
	"tms/pkg/kafka"
	"tms/pkg/logger"
	"tms/pkg/metrics"
	"tms/pkg/model"
)

const (
	TypeLoadPosted       = "load.posted"
	TypeLoadCancelled    = "load.cancelled"
	TypeBidSubmitted     = "bid.submitted"
	TypeBidRejected      = "bid.rejected"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"

	SchemaVersion = "1"
	Source        = "tms"
)

// Event is keyed by load id so every event of one load lands on the same
// partition in order.
type Event struct {
	Type    string
	LoadID  string
	Payload any
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type BidRejected struct {
	*model.Bid
	Reason string `json:"reason"`
}

func LoadPosted(l *model.Load) Event {
	return Event{Type: TypeLoadPosted, LoadID: l.ID, Payload: l}
}

func LoadCancelled(l *model.Load) Event {
	return Event{Type: TypeLoadCancelled, LoadID: l.ID, Payload: l}
}

func BidSubmitted(b *model.Bid) Event {
	return Event{Type: TypeBidSubmitted, LoadID: b.LoadID, Payload: b}
}

func BidRejectedEvent(b *model.Bid, reason string) Event {
	return Event{Type: TypeBidRejected, LoadID: b.LoadID, Payload: BidRejected{Bid: b, Reason: reason}}
}

func BookingConfirmed(b *model.Booking) Event {
	return Event{Type: TypeBookingConfirmed, LoadID: b.LoadID, Payload: b}
}

func BookingCancelled(b *model.Booking) Event {
	return Event{Type: TypeBookingCancelled, LoadID: b.LoadID, Payload: b}
}

type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer MessagePublisher
	log      *logger.Logger
}

func NewKafkaPublisher(producer MessagePublisher, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, e Event) {
	msg := kafka.NewMessage().
		WithKey(e.LoadID).
		WithEventType(e.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithValue(e.Payload).
		Build()

	// The request may already be finishing; the event outlives it.
	if err := p.producer.Publish(context.WithoutCancel(ctx), msg); err != nil {
		p.log.Warn("Failed to publish event",
			"event_type", e.Type,
			"load_id", e.LoadID,
			"event_id", msg.EventID(),
			"error", err,
		)
	}
}

type logPublisher struct {
	log       *logger.Logger
	collector *metrics.Collector
}

// NewLogPublisher is used when no broker is configured.
func NewLogPublisher(log *logger.Logger, collector *metrics.Collector) Publisher {
	return &logPublisher{log: log, collector: collector}
}

func (p *logPublisher) Publish(_ context.Context, e Event) {
	p.collector.RecordEventPublished(e.Type, nil)
	p.log.Debug("Domain event", "event_type", e.Type, "load_id", e.LoadID)
}
