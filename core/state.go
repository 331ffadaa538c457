package core

import "maps"

// State is the conversation state a step loop operates on: the ordered
// message history, a free-form data map and the remaining step budget.
// A State is owned by exactly one run and is not safe for concurrent use.
type State struct {
	Messages       []Message      `json:"messages"`
	Data           map[string]any `json:"data,omitempty"`
	RemainingSteps int            `json:"remaining_steps"`
}

// NewState creates a state seeded with history and a step budget.
func NewState(history []Message, data map[string]any, steps int) *State {
	s := &State{
		Messages:       make([]Message, len(history)),
		Data:           map[string]any{},
		RemainingSteps: steps,
	}
	copy(s.Messages, history)
	maps.Copy(s.Data, data)
	return s
}

// Append adds messages to the end of the history.
func (s *State) Append(msgs ...Message) { s.Messages = append(s.Messages, msgs...) }

// Last returns the most recent message.
func (s *State) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// ApplyDelta merges d into the data map.
func (s *State) ApplyDelta(d map[string]any) {
	if len(d) == 0 {
		return
	}
	if s.Data == nil {
		s.Data = map[string]any{}
	}
	maps.Copy(s.Data, d)
}

// ConsumeStep decrements the remaining step budget. It never goes below zero.
func (s *State) ConsumeStep() {
	if s.RemainingSteps > 0 {
		s.RemainingSteps--
	}
}

// Clone returns a copy whose slices and maps can diverge independently.
func (s *State) Clone() *State {
	return NewState(s.Messages, s.Data, s.RemainingSteps)
}
