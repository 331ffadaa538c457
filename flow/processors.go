package flow

import (
	"fmt"
	"maps"
	"time"

	"github.com/hupe1980/agentdesk/core"
	internalutil "github.com/hupe1980/agentdesk/internal/util"
	"github.com/hupe1980/agentdesk/model"
)

// CurrentDateKey is the template variable holding today's date (YYYY-MM-DD).
const CurrentDateKey = "current_date"

// InstructionsProcessor renders the agent instructions as the system message.
type InstructionsProcessor struct {
	now func() time.Time
}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor() *InstructionsProcessor {
	return &InstructionsProcessor{now: time.Now}
}

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest renders the instructions through the state data map (plus
// current_date) and prepends them as the system message.
func (p *InstructionsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	instructions, err := agent.ResolveInstructions(runCtx)
	if err != nil {
		return fmt.Errorf("failed to resolve instruction: %w", err)
	}

	data := maps.Clone(runCtx.State.Data)
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data[CurrentDateKey]; !ok {
		data[CurrentDateKey] = p.now().Format(internalutil.DateLayout)
	}

	rendered, err := internalutil.RenderTemplate(instructions, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	runCtx.LogDebug("agent.instruction.resolved", "agent", agent.GetName(), "length", len(rendered))

	if rendered == "" {
		return nil
	}

	req.Contents = append([]core.Content{core.NewTextContent(core.RoleSystem, rendered)}, req.Contents...)

	return nil
}

// ContentsProcessor appends the conversation history to the request.
type ContentsProcessor struct{}

// NewContentsProcessor creates a new contents processor.
func NewContentsProcessor() *ContentsProcessor { return &ContentsProcessor{} }

// Name returns the processor's identifier.
func (p *ContentsProcessor) Name() string { return "contents" }

// ProcessRequest appends every non-partial message of the state.
func (p *ContentsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, _ FlowAgent) error {
	for _, msg := range runCtx.State.Messages {
		if msg.Partial || len(msg.Content.Parts) == 0 {
			continue
		}
		req.Contents = append(req.Contents, msg.Content)
	}
	return nil
}
