package engine

import (
	"context"
	"sync"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/logging"
)

// CallbackType names a lifecycle point of a turn.
type CallbackType string

const (
	// CallbackBeforeAgent runs before the agent starts. An error aborts the
	// turn before any model call.
	CallbackBeforeAgent CallbackType = "before_agent"

	// CallbackAfterAgent runs after a successful turn.
	CallbackAfterAgent CallbackType = "after_agent"

	// CallbackOnMessage runs for every complete message after it has been
	// persisted.
	CallbackOnMessage CallbackType = "on_message"

	// CallbackOnError runs when a turn fails. Its own errors are ignored.
	CallbackOnError CallbackType = "on_error"

	// CallbackOnStateChange runs before the data delta of a turn is
	// persisted. An error rejects the delta.
	CallbackOnStateChange CallbackType = "on_state_change"
)

// CallbackContext carries the information available at a lifecycle point.
type CallbackContext struct {
	RunContext *core.RunContext

	// Message is set for CallbackOnMessage.
	Message *core.Message

	AgentID string
	ModelID string

	// Delta is the data map delta of the turn.
	Delta map[string]any

	// Err is set for CallbackOnError.
	Err error

	CallbackType CallbackType
}

// Callback is a lifecycle hook.
type Callback interface {
	Type() CallbackType
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType { return c.callbackType }

// Execute calls the wrapped function.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager holds callbacks by type and runs them in registration
// order. It is safe for concurrent use.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs every callback of callbackType and stops at the
// first error.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	if cm == nil {
		return nil
	}

	cm.mu.RLock()
	callbacks := cm.callbacks[callbackType]
	cm.mu.RUnlock()

	callbackCtx.CallbackType = callbackType

	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback writes one structured log line per lifecycle event.
type LoggingCallback struct {
	callbackType CallbackType
	logger       logging.Logger
}

// NewLoggingCallback creates a logging callback for callbackType.
func NewLoggingCallback(callbackType CallbackType, logger logging.Logger) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType { return c.callbackType }

// Execute logs the lifecycle event.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}

	args := []any{"agent", callbackCtx.AgentID, "model", callbackCtx.ModelID}
	if rc := callbackCtx.RunContext; rc != nil {
		args = append(args, "run_id", rc.RunID, "thread_id", rc.ThreadID)
	}
	if m := callbackCtx.Message; m != nil {
		args = append(args, "message_id", m.ID, "role", m.Role(), "tool_calls", len(m.FunctionCalls()))
	}
	if callbackCtx.Err != nil {
		args = append(args, "error", callbackCtx.Err.Error())
	}

	c.logger.Info("engine.callback."+string(c.callbackType), args...)

	return nil
}

// StateValidationCallback validates the data delta of a turn before it is
// persisted.
type StateValidationCallback struct {
	validator func(delta map[string]any) error
}

// NewStateValidationCallback creates a new state validation callback.
func NewStateValidationCallback(validator func(delta map[string]any) error) *StateValidationCallback {
	return &StateValidationCallback{
		validator: validator,
	}
}

// Type returns CallbackOnStateChange.
func (c *StateValidationCallback) Type() CallbackType { return CallbackOnStateChange }

// Execute runs the validator over the delta.
func (c *StateValidationCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.validator != nil && len(callbackCtx.Delta) > 0 {
		return c.validator(callbackCtx.Delta)
	}

	return nil
}
