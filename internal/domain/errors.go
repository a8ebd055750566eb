package domain

import "errors"

var (
	// ErrProviderUnavailable is returned when an availability probe fails.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrEmptyCommand is returned when a provider produced no usable command.
	ErrEmptyCommand = errors.New("empty command")
	// ErrInvalidCommand is returned when a generated command fails validation.
	ErrInvalidCommand = errors.New("invalid command")
)
