// Package engine runs conversation turns.
//
// A turn selects an agent from the agent registry and a model from the model
// resolver, loads the thread from the session store, appends the user
// message and runs the agent's step loop. Selection errors are returned
// before any session is touched.
//
// # Persistence
//
// Every complete message the agent emits is appended to the thread as it
// arrives. Partial (streamed) chunks are forwarded to the caller only. The
// data map changes made by tools are persisted once at the end of the turn
// as a delta.
//
// # Concurrency
//
// Config.MaxConcurrentInvocations bounds running turns; Invoke blocks until
// a slot is free or its context ends. Each turn can be stopped with Cancel.
//
// # Callbacks
//
// A CallbackManager hooks into the lifecycle: before the agent starts, on
// every persisted message, before the delta is persisted, after success and
// on failure.
package engine
