package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/flow"
	"github.com/hupe1980/agentdesk/internal/testutil"
	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/tool"
)

type noteArgs struct {
	Note string `json:"note" description:"Text to remember"`
}

func noteTool() tool.Tool {
	return tool.NewTypedTool("remember", "Stores a note", func(tc *core.ToolContext, args noteArgs) tool.Result {
		tc.SetState("note", args.Note)
		return tool.Success("stored", nil)
	})
}

func newRun(steps int) *core.RunContext {
	state := core.NewState([]core.Message{core.NewUserMessage("hi")}, nil, steps)
	return core.NewRunContext(context.Background(), "t", "r", core.AgentInfo{Name: "helper"}, state, nil, nil, logging.NoOpLogger{})
}

func TestNewModelAgent_Defaults(t *testing.T) {
	a, err := NewModelAgent("helper")
	require.NoError(t, err)

	assert.Equal(t, "helper", a.Name())
	assert.Equal(t, "Agent helper", a.Description())
	assert.Equal(t, DefaultMaxSteps, a.MaxSteps())
	assert.Equal(t, 0, a.GetTools().Len())
}

func TestNewModelAgent_RejectsBadInput(t *testing.T) {
	_, err := NewModelAgent("")
	require.Error(t, err)

	_, err = NewModelAgent("helper", func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{noteTool(), noteTool()}
	})
	require.Error(t, err)
}

func TestModelAgent_RunWithTools(t *testing.T) {
	a := MustNewModelAgent("helper", func(o *ModelAgentOptions) {
		o.Description = "Remembers notes."
		o.Instruction = NewInstructionFromText("You remember notes.")
		o.Tools = []tool.Tool{noteTool()}
		o.MaxSteps = 3
	})
	m := testutil.NewScriptedModel(
		testutil.ScriptedTurn{Final: testutil.ToolCallResponse(core.FunctionCall{ID: "c1", Name: "remember", Arguments: `{"note":"milk"}`})},
		testutil.ScriptedTurn{Final: testutil.TextResponse("noted")},
	)

	rc := newRun(a.MaxSteps())
	require.NoError(t, a.Run(rc, m))

	assert.Equal(t, []string{flow.NodeModel, flow.NodeTools, flow.NodeModel, flow.NodeDone}, rc.Visited)
	assert.Equal(t, "milk", rc.State.Data["note"])
	assert.Equal(t, map[string]any{"note": "milk"}, rc.DataDelta)

	require.Len(t, m.BoundTools(0), 1)
	assert.Equal(t, "remember", m.BoundTools(0)[0].Function.Name)

	req := m.Requests()[0]
	require.NotEmpty(t, req.Contents)
	assert.Equal(t, core.RoleSystem, req.Contents[0].Role)
	assert.Equal(t, "You remember notes.", req.Contents[0].Text())
}

func TestModelAgent_RunWrapsModelError(t *testing.T) {
	boom := errors.New("boom")
	a := MustNewModelAgent("helper")
	m := testutil.NewScriptedModel(testutil.ScriptedTurn{Err: boom})

	err := a.Run(newRun(5), m)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
