package flow

import (
	"fmt"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/model"
)

// Options configure a StepLoop.
type Options struct {
	// Executor runs the tool calls of one tools round.
	Executor FunctionExecutor
	// RequestProcessors build the model request; order defines execution order.
	RequestProcessors []RequestProcessor
}

// StepLoop runs one agent turn against a resolved model.
type StepLoop struct {
	agent FlowAgent
	model model.Model
	opts  Options
}

// NewStepLoop creates a step loop with the default processors (instructions,
// then contents) and an order-preserving parallel executor.
func NewStepLoop(agent FlowAgent, m model.Model, optFns ...func(o *Options)) *StepLoop {
	opts := Options{
		Executor:          NewParallelFunctionExecutor(FunctionExecutorConfig{MaxParallel: 4}),
		RequestProcessors: []RequestProcessor{NewInstructionsProcessor(), NewContentsProcessor()},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if defs := agent.GetTools().Definitions(); len(defs) > 0 {
		m = m.BindTools(defs...)
	}

	return &StepLoop{agent: agent, model: m, opts: opts}
}

// Run drives the state machine until done. Model and protocol failures are
// returned; tool failures are fed back to the model as error results.
func (l *StepLoop) Run(runCtx *core.RunContext) error {
	node := NodeModel

	for {
		if err := runCtx.Err(); err != nil {
			return err
		}

		runCtx.Visit(node)

		switch node {
		case NodeModel:
			refused, err := l.callModel(runCtx)
			if err != nil {
				return err
			}
			if refused {
				node = NodeDone
				continue
			}
			if node, err = Route(runCtx.State); err != nil {
				return err
			}
		case NodeTools:
			if err := l.runTools(runCtx); err != nil {
				return err
			}
			node = NodeModel
		case NodeDone:
			return nil
		default:
			return fmt.Errorf("%w: unknown node %q", core.ErrProtocol, node)
		}
	}
}

// Route decides the successor of the model node from the last message.
func Route(state *core.State) (string, error) {
	last, ok := state.Last()
	if !ok || !last.IsAssistant() {
		return "", fmt.Errorf("%w: expected assistant message", core.ErrProtocol)
	}
	if last.HasToolCalls() {
		return NodeTools, nil
	}
	return NodeDone, nil
}

// callModel performs one model turn. It reports whether the response was
// replaced by the step budget refusal.
func (l *StepLoop) callModel(runCtx *core.RunContext) (bool, error) {
	req := new(model.Request)
	for _, p := range l.opts.RequestProcessors {
		if err := p.ProcessRequest(runCtx, req, l.agent); err != nil {
			return false, fmt.Errorf("request processor %s failed: %w", p.Name(), err)
		}
	}

	name := l.agent.GetName()

	resp, err := model.Collect(runCtx.Context, l.model, *req, func(chunk model.Response) error {
		msg := core.NewMessage(name, chunk.Content)
		msg.Partial = true
		if chunk.ID != "" {
			msg.ID = chunk.ID
		}
		return runCtx.EmitMessage(msg)
	})
	if err != nil {
		runCtx.LogError("flow.model.error", "agent", name, "run_id", runCtx.RunID, "error", err.Error())
		return false, err
	}

	content := resp.Content
	content.Role = core.RoleAssistant
	msg := core.NewMessage(name, content)
	if resp.ID != "" {
		msg.ID = resp.ID
	}

	refused := false
	if runCtx.State.RemainingSteps < 2 && msg.HasToolCalls() {
		runCtx.LogWarn("flow.model.step_budget_exhausted", "agent", name, "run_id", runCtx.RunID, "remaining_steps", runCtx.State.RemainingSteps)
		msg.Content = core.NewTextContent(core.RoleAssistant, RefusalMessage)
		refused = true
	}

	runCtx.Append(msg)
	runCtx.LogDebug("flow.model.response", "agent", name, "run_id", runCtx.RunID, "tool_calls", len(msg.FunctionCalls()), "finish_reason", resp.FinishReason)

	return refused, runCtx.EmitMessage(msg)
}

// runTools executes every call of the last assistant message, appends one
// result message per call in call order and merges tool state deltas and
// saved artifact ids.
func (l *StepLoop) runTools(runCtx *core.RunContext) error {
	last, ok := runCtx.State.Last()
	if !ok || !last.HasToolCalls() {
		return fmt.Errorf("%w: tools node without pending tool calls", core.ErrProtocol)
	}

	results := l.opts.Executor.Execute(runCtx, l.agent.GetTools(), last.FunctionCalls())

	name := l.agent.GetName()
	for _, r := range results {
		msg := core.NewToolResultMessage(name, r.Call.ID, r.Call.Name, r.Result)
		runCtx.Append(msg)
		runCtx.ApplyDelta(r.Delta)
		runCtx.Artifacts = append(runCtx.Artifacts, r.Artifacts...)
		if err := runCtx.EmitMessage(msg); err != nil {
			return err
		}
	}

	runCtx.State.ConsumeStep()

	return nil
}
