package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/model"
)

// ErrScriptExhausted is returned when a ScriptedModel is called more often
// than it has scripted turns.
var ErrScriptExhausted = errors.New("scripted model: no more turns")

// ScriptedTurn is one scripted model reply: optional streamed fragments,
// then the final content, or an error.
type ScriptedTurn struct {
	Partials []string
	Final    core.Content
	Err      error
}

// ScriptedModel replays turns in order and records every request and the
// tools bound at call time. Bound copies share the script and the records.
type ScriptedModel struct {
	state *scriptState
	tools []model.ToolDefinition
}

type scriptState struct {
	mu       sync.Mutex
	turns    []ScriptedTurn
	next     int
	requests []model.Request
	bound    [][]model.ToolDefinition
}

// NewScriptedModel creates a model replaying turns.
func NewScriptedModel(turns ...ScriptedTurn) *ScriptedModel {
	return &ScriptedModel{state: &scriptState{turns: turns}}
}

// Generate implements model.Model.
func (m *ScriptedModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	s := m.state
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.bound = append(s.bound, m.tools)
	var (
		turn ScriptedTurn
		ok   bool
	)
	if s.next < len(s.turns) {
		turn, ok = s.turns[s.next], true
		s.next++
	}
	s.mu.Unlock()

	out := make(chan model.Response, len(turn.Partials)+1)
	errCh := make(chan error, 1)
	defer close(out)
	defer close(errCh)

	switch {
	case !ok:
		errCh <- ErrScriptExhausted
	case turn.Err != nil:
		errCh <- turn.Err
	case ctx.Err() != nil:
		errCh <- ctx.Err()
	default:
		id := core.NewID()
		for _, p := range turn.Partials {
			out <- model.Response{ID: id, Partial: true, Content: core.NewTextContent(core.RoleAssistant, p)}
		}
		out <- model.Response{ID: id, Content: turn.Final, FinishReason: "stop"}
	}

	return out, errCh
}

// BindTools implements model.Model.
func (m *ScriptedModel) BindTools(tools ...model.ToolDefinition) model.Model {
	return &ScriptedModel{state: m.state, tools: tools}
}

// Info implements model.Model.
func (m *ScriptedModel) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "test", SupportsTools: true}
}

// Calls returns the number of Generate invocations.
func (m *ScriptedModel) Calls() int {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return len(m.state.requests)
}

// Requests returns the recorded requests.
func (m *ScriptedModel) Requests() []model.Request {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return append([]model.Request(nil), m.state.requests...)
}

// BoundTools returns the tool definitions bound for the i-th call.
func (m *ScriptedModel) BoundTools(i int) []model.ToolDefinition {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return m.state.bound[i]
}
