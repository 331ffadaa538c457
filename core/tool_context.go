package core

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/hupe1980/agentdesk/logging"
)

// ToolContext provides a constrained surface for tool implementations invoked
// by an agent. State mutations are staged in a local delta and only merged
// into the conversation state by the executor, in call order, after all
// calls of a round have completed.
type ToolContext struct {
	runCtx         *RunContext
	functionCallID string

	mu        sync.Mutex
	delta     map[string]any
	artifacts []string

	*scopedLogger
}

// NewToolContext constructs a tool context bound to a parent RunContext
// and unique functionCallID.
func NewToolContext(runCtx *RunContext, functionCallID string) *ToolContext {
	return &ToolContext{
		runCtx:         runCtx,
		functionCallID: functionCallID,
		delta:          map[string]any{},
		scopedLogger:   runCtx.scopedLogger.with("function_call_id", functionCallID),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// ThreadID returns the conversation thread of the tool invocation.
func (tc *ToolContext) ThreadID() string { return tc.runCtx.ThreadID }

// RunID returns the run ID associated with the tool invocation.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.scopedLogger.Logger() }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the agent name associated with the tool invocation.
func (tc *ToolContext) AgentName() string { return tc.runCtx.Agent.Name }

// GetState returns a staged value if present, else the conversation state value.
func (tc *ToolContext) GetState(k string) (any, bool) {
	tc.mu.Lock()
	v, ok := tc.delta[k]
	tc.mu.Unlock()
	if ok {
		return v, true
	}
	return tc.runCtx.GetState(k)
}

// SetState stages a data map mutation.
func (tc *ToolContext) SetState(k string, v any) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.delta[k] = v
}

// Delta returns a copy of the staged data map mutations.
func (tc *ToolContext) Delta() map[string]any {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return maps.Clone(tc.delta)
}

// SaveArtifact persists artifact bytes under the thread of the invocation.
func (tc *ToolContext) SaveArtifact(id string, data []byte) error {
	if tc.runCtx.ArtifactStore == nil {
		return fmt.Errorf("artifact service not configured")
	}

	if err := tc.runCtx.ArtifactStore.Save(tc.ThreadID(), id, data); err != nil {
		return err
	}

	tc.mu.Lock()
	tc.artifacts = append(tc.artifacts, id)
	tc.mu.Unlock()

	return nil
}

// Artifacts returns the ids saved through this context.
func (tc *ToolContext) Artifacts() []string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return append([]string(nil), tc.artifacts...)
}

// LoadArtifact retrieves a persisted artifact by id.
func (tc *ToolContext) LoadArtifact(id string) ([]byte, error) {
	if tc.runCtx.ArtifactStore == nil {
		return nil, fmt.Errorf("artifact service not configured")
	}

	return tc.runCtx.ArtifactStore.Get(tc.ThreadID(), id)
}
