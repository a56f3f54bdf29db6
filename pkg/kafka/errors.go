package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("kafka producer is closed")

	// ErrInvalidMessage wraps message construction failures.
	ErrInvalidMessage = errors.New("invalid message")

	ErrEmptyKey   = errors.New("message key cannot be empty")
	ErrEmptyValue = errors.New("message value cannot be empty")
)
