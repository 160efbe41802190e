package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("kafka producer is closed")

	// An event without a key would lose per-load ordering.
	ErrEmptyKey = errors.New("message key cannot be empty")

	ErrEmptyValue = errors.New("message value cannot be empty")
)
