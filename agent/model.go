package agent

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/flow"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/tool"
)

// DefaultMaxSteps is the step budget used when none is configured.
const DefaultMaxSteps = 25

// ModelAgentOptions configure a ModelAgent.
type ModelAgentOptions struct {
	// Description is shown when listing agents.
	Description string
	// Instruction is the system prompt source. Text is rendered as a template
	// over the conversation data before every model call.
	Instruction Instruction
	// Tools offered to the model. Names must be unique.
	Tools []tool.Tool
	// MaxSteps bounds the number of tools rounds in one turn.
	MaxSteps int
	// MaxParallelTools bounds concurrent tool calls within one round.
	MaxParallelTools int
}

// ModelAgent is a tool-calling conversational agent driven by the step loop.
type ModelAgent struct {
	BaseAgent
	instruction Instruction
	tools       *tool.Set
	maxSteps    int
	maxParallel int
}

// NewModelAgent creates a ModelAgent. It fails when the tool list contains
// an unnamed or duplicate tool.
func NewModelAgent(name string, optFns ...func(o *ModelAgentOptions)) (*ModelAgent, error) {
	if name == "" {
		return nil, errors.New("agent name must not be empty")
	}

	opts := ModelAgentOptions{
		Description:      fmt.Sprintf("Agent %s", name),
		MaxSteps:         DefaultMaxSteps,
		MaxParallelTools: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	set, err := tool.NewSet(opts.Tools...)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}

	return &ModelAgent{
		BaseAgent:   NewBaseAgent(name, opts.Description),
		instruction: opts.Instruction,
		tools:       set,
		maxSteps:    opts.MaxSteps,
		maxParallel: opts.MaxParallelTools,
	}, nil
}

// MustNewModelAgent is like NewModelAgent but panics on error.
func MustNewModelAgent(name string, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	a, err := NewModelAgent(name, optFns...)
	if err != nil {
		panic(err)
	}

	return a
}

// GetName returns the agent's name.
func (a *ModelAgent) GetName() string { return a.Name() }

// GetTools returns the agent's tool set.
func (a *ModelAgent) GetTools() *tool.Set { return a.tools }

// MaxSteps returns the configured step budget.
func (a *ModelAgent) MaxSteps() int { return a.maxSteps }

// ResolveInstructions produces the raw system prompt by resolving static or
// dynamic instruction sources.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.instruction.Resolve(runCtx)
}

// Run executes one turn of the step loop with the agent's tools bound to m.
func (a *ModelAgent) Run(runCtx *core.RunContext, m model.Model) error {
	runCtx.LogDebug(
		"agent.run.start",
		"agent", a.Name(),
		"run", runCtx.RunID,
		"tools", a.tools.Len(),
		"remaining_steps", runCtx.State.RemainingSteps,
	)

	loop := flow.NewStepLoop(a, m, func(o *flow.Options) {
		o.Executor = flow.NewParallelFunctionExecutor(flow.FunctionExecutorConfig{MaxParallel: a.maxParallel})
	})

	if err := loop.Run(runCtx); err != nil {
		runCtx.LogError("agent.run.error", "agent", a.Name(), "run", runCtx.RunID, "error", err.Error())
		return fmt.Errorf("agent %s: %w", a.Name(), err)
	}

	runCtx.LogDebug("agent.run.complete", "agent", a.Name(), "run", runCtx.RunID, "visited", runCtx.Visited)

	return nil
}
