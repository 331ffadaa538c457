package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/agentdesk/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by flows. The system
// prompt travels as the first Contents entry with role system; tools are
// attached with BindTools.
type Request struct {
	Contents []core.Content `json:"contents"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"` // Indicates if this is a partial response
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "azure", "anthropic", "fake", etc.
	SupportsTools bool   `json:"supports_tools"`
	Streaming     bool   `json:"streaming"`
}

// Model is the minimal interface required by flows & agents to drive generation.
//
// Generate emits zero or more partial responses followed by exactly one
// final response on the first channel, then closes it. Failures are reported
// on the second channel, which is closed after the first.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// BindTools returns a model that advertises tools on every request. The
	// receiver is left untouched.
	BindTools(tools ...ToolDefinition) Model

	// Info returns information about the model implementation.
	Info() Info
}

// ErrNoFinalResponse is returned by Collect when the model closed its stream
// without a final response.
var ErrNoFinalResponse = errors.New("model returned no final response")

// Collect drains a generation. Partial chunks are handed to onPartial (which
// may be nil); the final response is returned.
func Collect(ctx context.Context, m Model, req Request, onPartial func(Response) error) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final    Response
		hasFinal bool
	)

	for resp := range respCh {
		if resp.Partial {
			if onPartial != nil {
				if err := onPartial(resp); err != nil {
					// keep draining so the producer can exit
					for range respCh {
					}
					return Response{}, err
				}
			}
			continue
		}
		final, hasFinal = resp, true
	}

	if err, ok := <-errCh; ok && err != nil {
		return Response{}, err
	}

	if !hasFinal {
		return Response{}, ErrNoFinalResponse
	}

	return final, nil
}

// ResponseText renders a function response payload as the text sent back to
// a provider. Strings pass through; everything else is JSON encoded.
func ResponseText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
