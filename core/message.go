package core

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry of a conversation. After it has been appended to a
// State it should be treated as immutable. Partial messages are streaming
// fragments of an assistant turn; they are forwarded to callers but never
// become part of the history.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   Content   `json:"content"`
	Partial   bool      `json:"partial,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message authored by 'author' with the given content.
func NewMessage(author string, content Content) Message {
	return Message{
		ID:        NewID(),
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, NewTextContent(RoleUser, text))
}

// NewAssistantMessage creates an assistant text message authored by an agent.
func NewAssistantMessage(author, text string) Message {
	return NewMessage(author, NewTextContent(RoleAssistant, text))
}

// NewToolResultMessage records the result of a tool call. The call id links
// the result to the originating FunctionCall.
func NewToolResultMessage(author, callID, name string, result any) Message {
	return NewMessage(author, Content{
		Role: RoleTool,
		Parts: []Part{FunctionResponsePart{FunctionResponse: FunctionResponse{
			ID:       callID,
			Name:     name,
			Response: result,
		}}},
	})
}

// NewID generates a new unique identifier for messages, runs and threads.
func NewID() string { return uuid.NewString() }

// Role returns the content role.
func (m Message) Role() string { return m.Content.Role }

// Text returns the concatenated text parts.
func (m Message) Text() string { return m.Content.Text() }

// IsAssistant reports whether the message was produced by a model.
func (m Message) IsAssistant() bool { return m.Content.Role == RoleAssistant }

// FunctionCalls returns any FunctionCall parts preserving their original order.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns any FunctionResponse parts preserving their original order.
func (m Message) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// HasToolCalls reports whether the message requests at least one tool call.
func (m Message) HasToolCalls() bool { return len(m.FunctionCalls()) > 0 }
