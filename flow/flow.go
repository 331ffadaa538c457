// Package flow implements the agent step loop: a small state machine that
// alternates between a model node and a tools node until the model stops
// requesting tools or the step budget runs out.
//
//	model --(tool calls)--> tools --> model
//	model --(no tool calls | refusal)--> done
package flow

import (
	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/tool"
)

// Step loop node names as recorded in the run trace.
const (
	NodeModel = "model"
	NodeTools = "tools"
	NodeDone  = "done"
)

// RefusalMessage replaces a tool-calling model response when the step budget
// cannot accommodate another tools round.
const RefusalMessage = "Sorry, need more steps to process this request."

// FlowAgent defines what the step loop needs from an agent.
type FlowAgent interface {
	// GetName returns the agent's name, used as message author.
	GetName() string

	// ResolveInstructions returns the raw (untemplated) system instructions.
	ResolveInstructions(runCtx *core.RunContext) (string, error)

	// GetTools returns the agent's tool set. It may be empty but not nil.
	GetTools() *tool.Set
}

// RequestProcessor processes the request before sending it to the model.
type RequestProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessRequest modifies the request before model execution.
	ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error
}
