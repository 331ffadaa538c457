package core

import (
	"context"
	"fmt"
	"maps"

	"github.com/hupe1980/agentdesk/logging"
)

// AgentInfo identifies the agent executing a run.
type AgentInfo struct {
	Name        string
	Description string
}

// RunContext carries execution state & helpers for one agent turn.
// It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (ThreadID, RunID, Agent info)
//   - The conversation State the step loop mutates
//   - The emission channel streamed to the caller
//   - The artifact store for generated files
//   - The trace of visited step-loop nodes
//
// Data map mutations performed via ApplyDelta are applied to State
// immediately and accumulated in DataDelta so the engine can persist them
// once the turn completes.
type RunContext struct {
	Context         context.Context
	ThreadID, RunID string
	Agent           AgentInfo
	State           *State
	Emit            chan<- Message
	ArtifactStore   ArtifactStore
	DataDelta       map[string]any
	Artifacts       []string
	Visited         []string

	*scopedLogger
}

// NewRunContext constructs a RunContext with empty delta buffers.
func NewRunContext(
	ctx context.Context,
	threadID, runID string,
	agent AgentInfo,
	state *State,
	emit chan<- Message,
	artifactStore ArtifactStore,
	logger logging.Logger,
) *RunContext {
	if state == nil {
		state = NewState(nil, nil, 0)
	}

	return &RunContext{
		Context:       ctx,
		ThreadID:      threadID,
		RunID:         runID,
		Agent:         agent,
		State:         state,
		Emit:          emit,
		ArtifactStore: artifactStore,
		DataDelta:     map[string]any{},
		Artifacts:     []string{},
		Visited:       []string{},
		scopedLogger:  newScopedLogger(logger, "thread_id", threadID),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// Visit records a step-loop node in the run trace.
func (rc *RunContext) Visit(node string) {
	rc.Visited = append(rc.Visited, node)
	rc.LogDebug("flow.node.visit", "run_id", rc.RunID, "node", node)
}

// Append adds messages to the conversation state.
func (rc *RunContext) Append(msgs ...Message) { rc.State.Append(msgs...) }

// ApplyDelta merges d into the state data map and the pending DataDelta.
func (rc *RunContext) ApplyDelta(d map[string]any) {
	if len(d) == 0 {
		return
	}
	rc.State.ApplyDelta(d)
	maps.Copy(rc.DataDelta, d)
}

// GetState returns a value from the state data map.
func (rc *RunContext) GetState(k string) (any, bool) {
	v, ok := rc.State.Data[k]
	return v, ok
}

// EmitMessage forwards msg to the caller. A nil Emit channel discards it.
func (rc *RunContext) EmitMessage(msg Message) error {
	if rc.Emit == nil {
		return nil
	}

	select {
	case <-rc.Context.Done():
		return rc.Context.Err()
	case rc.Emit <- msg:
	}

	return nil
}

// SaveArtifact stores bytes in the ArtifactStore and records the id.
func (rc *RunContext) SaveArtifact(id string, data []byte) error {
	if rc.ArtifactStore == nil {
		return fmt.Errorf("artifact store not configured")
	}

	if err := rc.ArtifactStore.Save(rc.ThreadID, id, data); err != nil {
		return err
	}

	rc.Artifacts = append(rc.Artifacts, id)

	return nil
}

// GetArtifact retrieves previously saved artifact bytes.
func (rc *RunContext) GetArtifact(id string) ([]byte, error) {
	if rc.ArtifactStore == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}

	return rc.ArtifactStore.Get(rc.ThreadID, id)
}

// ListArtifacts returns artifact IDs stored for the thread.
func (rc *RunContext) ListArtifacts() ([]string, error) {
	if rc.ArtifactStore == nil {
		return []string{}, nil
	}

	return rc.ArtifactStore.List(rc.ThreadID)
}
