package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder_Build(t *testing.T) {
	msg := NewMessage().
		WithKey("load-1").
		WithEventType("booking.confirmed").
		WithSource("tms").
		WithValue(map[string]int{"allocatedTrucks": 3}).
		Build()

	assert.Equal(t, "load-1", msg.Key)
	assert.Equal(t, "booking.confirmed", msg.EventType())
	assert.NotEmpty(t, msg.EventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var decoded map[string]int
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, 3, decoded["allocatedTrucks"])
}

func TestMessageBuilder_UniqueEventIDs(t *testing.T) {
	a := NewMessage().WithKey("k").Build()
	b := NewMessage().WithKey("k").Build()
	assert.NotEqual(t, a.EventID(), b.EventID())
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	msg := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Empty(t, msg.Value)
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := &Producer{topic: "events"}

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	p.closed = true
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}), ErrProducerClosed)
}

func TestProducer_MiddlewareOrder(t *testing.T) {
	p := &Producer{topic: "events"}
	var order []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "first")
		return nil
	})
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "second")
		return next(ctx, msg)
	})

	require.NoError(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}))
	assert.Equal(t, []string{"first"}, order)
}
