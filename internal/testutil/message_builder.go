package testutil

import (
	"github.com/hupe1980/agentdesk/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Author("bot").AssistantText("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	author        string
	id            string
	role          string
	textParts     []string
	funcCalls     []core.FunctionCall
	funcResponses []core.FunctionResponse
	partial       bool
}

// NewMessageBuilder creates a builder with default author "agent".
func NewMessageBuilder() *MessageBuilder { return &MessageBuilder{author: "agent"} }

// Author sets the author name for the message (chainable).
func (b *MessageBuilder) Author(a string) *MessageBuilder { b.author = a; return b }

// ID overrides the auto-generated message ID (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Partial marks the message as a streaming fragment (chainable).
func (b *MessageBuilder) Partial() *MessageBuilder { b.partial = true; return b }

// UserText appends a text part and sets role to user (chainable).
func (b *MessageBuilder) UserText(t string) *MessageBuilder {
	b.role = core.RoleUser
	b.textParts = append(b.textParts, t)
	return b
}

// AssistantText appends a text part and sets role to assistant (chainable).
func (b *MessageBuilder) AssistantText(t string) *MessageBuilder {
	b.role = core.RoleAssistant
	b.textParts = append(b.textParts, t)
	return b
}

// FunctionCall adds a function call part with the provided id, name and JSON argument string (chainable).
func (b *MessageBuilder) FunctionCall(id, name, args string) *MessageBuilder {
	b.role = core.RoleAssistant
	b.funcCalls = append(b.funcCalls, core.FunctionCall{ID: id, Name: name, Arguments: args})
	return b
}

// FunctionResponse adds a function response part and sets role to tool (chainable).
func (b *MessageBuilder) FunctionResponse(id, name string, result any) *MessageBuilder {
	b.role = core.RoleTool
	b.funcResponses = append(b.funcResponses, core.FunctionResponse{ID: id, Name: name, Response: result})
	return b
}

// Build constructs the core.Message value.
func (b *MessageBuilder) Build() core.Message {
	parts := make([]core.Part, 0, len(b.textParts)+len(b.funcCalls)+len(b.funcResponses))
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}
	for _, fc := range b.funcCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	for _, fr := range b.funcResponses {
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}

	role := b.role
	if role == "" {
		role = core.RoleAssistant
	}

	msg := core.NewMessage(b.author, core.Content{Role: role, Parts: parts})
	if b.id != "" {
		msg.ID = b.id
	}
	msg.Partial = b.partial
	return msg
}

// ToolCallResponse builds assistant content requesting the given calls.
// Use with ScriptedModel.
func ToolCallResponse(calls ...core.FunctionCall) core.Content {
	parts := make([]core.Part, 0, len(calls))
	for _, c := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: c})
	}
	return core.Content{Role: core.RoleAssistant, Parts: parts}
}

// TextResponse builds a final assistant text content. Use with ScriptedModel.
func TextResponse(text string) core.Content {
	return core.NewTextContent(core.RoleAssistant, text)
}
