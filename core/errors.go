package core

import "errors"

var (
	// ErrUnsupportedModel is returned when a model id has no table entry.
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrMissingConfiguration is returned when a provider is selected but one
	// of its required settings is absent or empty.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrUnknownAgent is returned when an agent id is not registered.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrProtocol signals an internal invariant violation of the step loop,
	// e.g. a non-assistant message where a model turn is expected.
	ErrProtocol = errors.New("protocol error")
)
