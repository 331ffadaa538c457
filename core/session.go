package core

import (
	"maps"
	"sync"
	"time"
)

// Session represents a conversation thread persisted between turns: its
// message history plus the state data map. It is safe for concurrent access.
//
// Contract:
//   - Mutations update the Updated timestamp
//   - GetMessages / GetData return defensive copies
//   - History filters to user/assistant/tool roles and excludes partial fragments
//   - Clone performs deep copies of maps/slices for safe divergence.
type Session struct {
	ID       string            `json:"id"`
	Data     map[string]any    `json:"data"`
	Messages []Message         `json:"messages"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	Metadata map[string]string `json:"metadata"`
	mu       sync.RWMutex
}

// NewSession creates a new session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, Data: map[string]any{}, Messages: []Message{}, Created: now, Updated: now, Metadata: map[string]string{}}
}

// GetData returns a copy of the data map.
func (s *Session) GetData() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.Data)
}

// ApplyDelta merges the provided key/value pairs into Data.
func (s *Session) ApplyDelta(delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.Data, delta)
	s.Updated = time.Now()
}

// AddMessages appends messages to the history.
func (s *Session) AddMessages(msgs ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, msgs...)
	s.Updated = time.Now()
}

// GetMessages returns a defensive copy of the full message slice.
func (s *Session) GetMessages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)
	return msgs
}

// History returns messages suitable as model context: user, assistant and
// tool roles only, no partial fragments.
func (s *Session) History() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		switch m.Content.Role {
		case RoleUser, RoleAssistant, RoleTool:
		default:
			continue
		}
		if m.Partial {
			continue
		}
		res = append(res, m)
	}
	return res
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, Data: maps.Clone(s.Data), Messages: make([]Message, len(s.Messages)), Created: s.Created, Updated: s.Updated, Metadata: maps.Clone(s.Metadata)}
	copy(clone.Messages, s.Messages)
	return clone
}

// SessionStore persists sessions and their evolving data / message history.
type SessionStore interface {
	// Get returns a snapshot of the session, creating it lazily when unknown.
	Get(id string) (*Session, error)
	AppendMessages(sessionID string, msgs ...Message) error
	ApplyDelta(sessionID string, delta map[string]any) error
	Delete(sessionID string) error
}
