package agent

import (
	"fmt"

	"github.com/hupe1980/agentdesk/core"
)

// Listing is one row of Registry.List.
type Listing struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Registry is an immutable, ordered table of agents keyed by id.
type Registry struct {
	order     []string
	agents    map[string]Agent
	defaultID string
}

// NewRegistry builds a registry from agents in the given order. The first
// agent is the default unless defaultID names another registered agent.
func NewRegistry(defaultID string, agents ...Agent) (*Registry, error) {
	r := &Registry{agents: make(map[string]Agent, len(agents))}

	for _, a := range agents {
		id := a.Name()
		if id == "" {
			return nil, fmt.Errorf("agent registry: empty agent id")
		}
		if _, dup := r.agents[id]; dup {
			return nil, fmt.Errorf("agent registry: duplicate agent id %q", id)
		}
		r.agents[id] = a
		r.order = append(r.order, id)
	}

	switch {
	case defaultID != "":
		if _, ok := r.agents[defaultID]; !ok {
			return nil, fmt.Errorf("agent registry: default %q: %w", defaultID, core.ErrUnknownAgent)
		}
		r.defaultID = defaultID
	case len(r.order) > 0:
		r.defaultID = r.order[0]
	}

	return r, nil
}

// Lookup returns the agent registered under id.
func (r *Registry) Lookup(id string) (Agent, error) {
	a, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownAgent, id)
	}

	return a, nil
}

// List returns id and description of every agent in registration order.
func (r *Registry) List() []Listing {
	out := make([]Listing, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, Listing{ID: id, Description: r.agents[id].Description()})
	}

	return out
}

// Default returns the default agent id.
func (r *Registry) Default() string { return r.defaultID }

// Len returns the number of registered agents.
func (r *Registry) Len() int { return len(r.order) }
