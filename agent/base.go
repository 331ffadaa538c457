package agent

import (
	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/model"
)

// Agent is a runnable assistant that can be dispatched by id.
type Agent interface {
	// Name returns the agent id.
	Name() string
	// Description returns a one-line human readable summary.
	Description() string
	// MaxSteps returns the step budget granted to one turn.
	MaxSteps() int
	// Run executes one turn against the resolved model.
	Run(runCtx *core.RunContext, m model.Model) error
}

// BaseAgent bundles identity helpers. Embed it in concrete agents.
type BaseAgent struct {
	name        string
	description string
}

// NewBaseAgent constructs a BaseAgent.
func NewBaseAgent(name, description string) BaseAgent {
	return BaseAgent{name: name, description: description}
}

// Name returns the agent id.
func (b *BaseAgent) Name() string { return b.name }

// Description returns the agent description.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }
