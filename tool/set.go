package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/model"
)

// Set is the closed, ordered dispatch table of tools available to an agent.
// It is built once and never modified, so it is safe for concurrent use.
type Set struct {
	tools []Tool
	index map[string]Tool
}

// NewSet builds a Set. Tool names must be non-empty and unique. An empty
// set is valid and exposes no tools.
func NewSet(tools ...Tool) (*Set, error) {
	s := &Set{tools: make([]Tool, 0, len(tools)), index: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t == nil || t.Name() == "" {
			return nil, errors.New("tool name must not be empty")
		}
		if _, dup := s.index[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name())
		}
		s.tools = append(s.tools, t)
		s.index[t.Name()] = t
	}
	return s, nil
}

// MustNewSet is like NewSet but panics on error. Intended for static tables.
func MustNewSet(tools ...Tool) *Set {
	s, err := NewSet(tools...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of tools.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tools)
}

// Lookup returns the tool registered under name.
func (s *Set) Lookup(name string) (Tool, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.index[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.tools))
	for i, t := range s.tools {
		names[i] = t.Name()
	}
	return names
}

// Definitions returns the model-facing declarations in registration order.
func (s *Set) Definitions() []model.ToolDefinition {
	if s == nil {
		return nil
	}
	defs := make([]model.ToolDefinition, len(s.tools))
	for i, t := range s.tools {
		defs[i] = model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}
	return defs
}

// Execute decodes the call arguments and dispatches to the named tool.
// Unknown tools, malformed arguments and panics become error Results.
func (s *Set) Execute(toolCtx *core.ToolContext, call core.FunctionCall) (res Result) {
	t, ok := s.Lookup(call.Name)
	if !ok {
		toolCtx.LogWarn("tool.call.unknown", "tool", call.Name)
		return FromError(&ToolError{
			Tool:    call.Name,
			Message: fmt.Sprintf("unknown tool %q; valid tools: %s", call.Name, strings.Join(s.Names(), ", ")),
			Code:    CodeUnknown,
		})
	}

	args := map[string]any{}
	if strings.TrimSpace(call.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return FromError(&ToolError{
				Tool:    call.Name,
				Message: fmt.Sprintf("invalid JSON arguments: %v", err),
				Code:    CodeValidation,
			})
		}
	}
	if args == nil {
		args = map[string]any{}
	}

	defer func() {
		if r := recover(); r != nil {
			toolCtx.LogError("tool.call.panic", "tool", call.Name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			res = FromError(&ToolError{Tool: call.Name, Message: fmt.Sprintf("tool panicked: %v", r), Code: CodePanic})
		}
	}()

	return t.Call(toolCtx, args)
}
