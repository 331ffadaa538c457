// Package logging provides a minimal logging interface and adapters for agentdesk.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine, flows, tools and model registry use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	desk, err := agentdesk.New(func(o *agentdesk.Options) { o.Logger = logger })
//
// Message keys follow a dotted event style ("flow.node.model", "tool.call.error")
// with structured key/value attributes.
package logging
