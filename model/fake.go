package model

import (
	"context"
	"sync"

	"github.com/hupe1980/agentdesk/core"
)

// DefaultFakeResponse is the canned answer of a FakeModel built without responses.
const DefaultFakeResponse = "This is a test response from the fake model."

// FakeModel is a deterministic Model for tests and offline runs. It returns
// its canned responses in order, cycling, and never requests tool calls.
type FakeModel struct {
	mu        sync.Mutex
	responses []string
	next      int
	calls     int
}

// NewFakeModel constructs a FakeModel. Without responses it always answers
// with DefaultFakeResponse.
func NewFakeModel(responses ...string) *FakeModel {
	if len(responses) == 0 {
		responses = []string{DefaultFakeResponse}
	}
	return &FakeModel{responses: responses}
}

// Generate implements Model.
func (m *FakeModel) Generate(ctx context.Context, _ Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	m.mu.Lock()
	text := m.responses[m.next%len(m.responses)]
	m.next++
	m.calls++
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}

		respCh <- Response{
			ID:           core.NewID(),
			Content:      core.NewTextContent(core.RoleAssistant, text),
			FinishReason: "stop",
		}
	}()

	return respCh, errCh
}

// BindTools is a no-op; the fake model never calls tools.
func (m *FakeModel) BindTools(...ToolDefinition) Model { return m }

// Calls returns how many times Generate was invoked.
func (m *FakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Info implements Model.
func (m *FakeModel) Info() Info {
	return Info{Name: "fake", Provider: "fake"}
}
