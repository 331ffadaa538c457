package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdesk/artifact"
	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/internal/testutil"
	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/tool"
)

type testAgent struct {
	name         string
	instructions string
	tools        *tool.Set
}

func (a *testAgent) GetName() string { return a.name }
func (a *testAgent) ResolveInstructions(*core.RunContext) (string, error) {
	return a.instructions, nil
}
func (a *testAgent) GetTools() *tool.Set { return a.tools }

type echoArgs struct {
	Text string `json:"text"`
}

func echoTool(delay time.Duration) tool.Tool {
	return tool.NewTypedTool("echo", "Echoes text", func(tc *core.ToolContext, args echoArgs) tool.Result {
		time.Sleep(delay)
		tc.SetState("last_echo", args.Text)
		return tool.Success("echoed", args.Text)
	})
}

func newRun(steps int, emit chan<- core.Message) *core.RunContext {
	state := core.NewState([]core.Message{core.NewUserMessage("hello")}, nil, steps)
	return core.NewRunContext(context.Background(), "thread", "run", core.AgentInfo{Name: "bot"}, state, emit, nil, logging.NoOpLogger{})
}

func TestStepLoop_TextAnswer(t *testing.T) {
	m := testutil.NewScriptedModel(testutil.ScriptedTurn{Final: testutil.TextResponse("hi there")})
	agent := &testAgent{name: "bot", instructions: "Be nice.", tools: tool.MustNewSet()}

	rc := newRun(10, nil)
	require.NoError(t, NewStepLoop(agent, m).Run(rc))

	assert.Equal(t, []string{NodeModel, NodeDone}, rc.Visited)
	require.Len(t, rc.State.Messages, 2)
	last, _ := rc.State.Last()
	assert.Equal(t, "hi there", last.Text())
	assert.Equal(t, "bot", last.Author)
	assert.Equal(t, 10, rc.State.RemainingSteps)
	assert.Nil(t, m.BoundTools(0), "no tools bound for an empty set")
}

func TestStepLoop_ToolRoundPreservesCallOrder(t *testing.T) {
	m := testutil.NewScriptedModel(
		testutil.ScriptedTurn{Final: testutil.ToolCallResponse(
			core.FunctionCall{ID: "c1", Name: "echo", Arguments: `{"text":"slow"}`},
			core.FunctionCall{ID: "c2", Name: "echo", Arguments: `{"text":"fast"}`},
		)},
		testutil.ScriptedTurn{Final: testutil.TextResponse("done")},
	)
	agent := &testAgent{name: "bot", tools: tool.MustNewSet(echoTool(0))}

	rc := newRun(10, nil)
	loop := NewStepLoop(agent, m, func(o *Options) {
		o.Executor = NewParallelFunctionExecutor(FunctionExecutorConfig{})
	})
	require.NoError(t, loop.Run(rc))

	assert.Equal(t, []string{NodeModel, NodeTools, NodeModel, NodeDone}, rc.Visited)
	assert.Equal(t, 9, rc.State.RemainingSteps)

	msgs := rc.State.Messages
	require.Len(t, msgs, 5) // user, assistant(calls), tool, tool, assistant
	assert.Equal(t, core.RoleTool, msgs[2].Role())
	assert.Equal(t, "c1", msgs[2].FunctionResponses()[0].ID)
	assert.Equal(t, "c2", msgs[3].FunctionResponses()[0].ID)
	assert.Equal(t, tool.Success("echoed", "slow"), msgs[2].FunctionResponses()[0].Response)

	// later calls win when deltas overlap
	assert.Equal(t, "fast", rc.State.Data["last_echo"])
	assert.Equal(t, "fast", rc.DataDelta["last_echo"])

	// second request carries the tool results; tools were bound on every call
	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[1].Contents, 4)
	require.Len(t, m.BoundTools(1), 1)
	assert.Equal(t, "echo", m.BoundTools(1)[0].Function.Name)
}

func TestStepLoop_RefusesWhenStepsExhausted(t *testing.T) {
	m := testutil.NewScriptedModel(testutil.ScriptedTurn{Final: testutil.ToolCallResponse(
		core.FunctionCall{ID: "c1", Name: "echo", Arguments: `{"text":"x"}`},
	)})
	agent := &testAgent{name: "bot", tools: tool.MustNewSet(echoTool(0))}

	emit := make(chan core.Message, 8)
	rc := newRun(1, emit)
	require.NoError(t, NewStepLoop(agent, m).Run(rc))

	assert.Equal(t, []string{NodeModel, NodeDone}, rc.Visited)
	last, _ := rc.State.Last()
	assert.Equal(t, RefusalMessage, last.Text())
	assert.False(t, last.HasToolCalls())
	assert.Empty(t, rc.DataDelta, "tool must not run")

	close(emit)
	var emitted []core.Message
	for msg := range emit {
		emitted = append(emitted, msg)
	}
	require.Len(t, emitted, 1)
	assert.Equal(t, last.ID, emitted[0].ID)
}

func TestStepLoop_ToolCallWithExactlyTwoStepsRuns(t *testing.T) {
	m := testutil.NewScriptedModel(
		testutil.ScriptedTurn{Final: testutil.ToolCallResponse(core.FunctionCall{ID: "c1", Name: "echo", Arguments: `{"text":"x"}`})},
		testutil.ScriptedTurn{Final: testutil.ToolCallResponse(core.FunctionCall{ID: "c2", Name: "echo", Arguments: `{"text":"y"}`})},
	)
	agent := &testAgent{name: "bot", tools: tool.MustNewSet(echoTool(0))}

	rc := newRun(2, nil)
	require.NoError(t, NewStepLoop(agent, m).Run(rc))

	assert.Equal(t, []string{NodeModel, NodeTools, NodeModel, NodeDone}, rc.Visited)
	last, _ := rc.State.Last()
	assert.Equal(t, RefusalMessage, last.Text())
	assert.Equal(t, 1, rc.State.RemainingSteps)
}

func TestStepLoop_UnknownToolBecomesErrorResult(t *testing.T) {
	m := testutil.NewScriptedModel(
		testutil.ScriptedTurn{Final: testutil.ToolCallResponse(core.FunctionCall{ID: "c1", Name: "nope", Arguments: `{}`})},
		testutil.ScriptedTurn{Final: testutil.TextResponse("sorry")},
	)
	agent := &testAgent{name: "bot", tools: tool.MustNewSet(echoTool(0))}

	rc := newRun(10, nil)
	require.NoError(t, NewStepLoop(agent, m).Run(rc))

	res := rc.State.Messages[2].FunctionResponses()[0].Response.(tool.Result)
	assert.True(t, res.IsError())
	assert.Contains(t, res.Message, "echo")
}

func TestStepLoop_ModelErrorPropagates(t *testing.T) {
	boom := errors.New("provider down")
	m := testutil.NewScriptedModel(testutil.ScriptedTurn{Err: boom})
	agent := &testAgent{name: "bot", tools: tool.MustNewSet()}

	rc := newRun(10, nil)
	err := NewStepLoop(agent, m).Run(rc)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rc.State.Messages, 1)
}

func TestStepLoop_PartialsEmittedNotStored(t *testing.T) {
	m := testutil.NewScriptedModel(testutil.ScriptedTurn{Partials: []string{"he", "llo"}, Final: testutil.TextResponse("hello")})
	agent := &testAgent{name: "bot", tools: tool.MustNewSet()}

	emit := make(chan core.Message, 8)
	rc := newRun(10, emit)
	require.NoError(t, NewStepLoop(agent, m).Run(rc))
	close(emit)

	var partial, final int
	for msg := range emit {
		if msg.Partial {
			partial++
		} else {
			final++
		}
	}
	assert.Equal(t, 2, partial)
	assert.Equal(t, 1, final)
	assert.Len(t, rc.State.Messages, 2)
}

func TestStepLoop_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rc := core.NewRunContext(ctx, "t", "r", core.AgentInfo{}, core.NewState(nil, nil, 5), nil, nil, nil)
	err := NewStepLoop(&testAgent{tools: tool.MustNewSet()}, testutil.NewScriptedModel()).Run(rc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRoute(t *testing.T) {
	_, err := Route(core.NewState(nil, nil, 1))
	assert.ErrorIs(t, err, core.ErrProtocol)

	_, err = Route(core.NewState([]core.Message{core.NewUserMessage("hi")}, nil, 1))
	assert.ErrorIs(t, err, core.ErrProtocol)
	assert.Contains(t, err.Error(), "expected assistant message")

	next, err := Route(core.NewState([]core.Message{core.NewAssistantMessage("bot", "ok")}, nil, 1))
	require.NoError(t, err)
	assert.Equal(t, NodeDone, next)

	withCall := testutil.NewMessageBuilder().FunctionCall("1", "echo", "{}").Build()
	next, err = Route(core.NewState([]core.Message{withCall}, nil, 1))
	require.NoError(t, err)
	assert.Equal(t, NodeTools, next)
}

func TestStepLoop_CollectsSavedArtifacts(t *testing.T) {
	saveTool := tool.NewTypedTool("save", "Saves a file", func(tc *core.ToolContext, args echoArgs) tool.Result {
		if err := tc.SaveArtifact(args.Text+".docx", []byte(args.Text)); err != nil {
			return tool.FromError(err)
		}
		return tool.Success("saved", nil)
	})
	m := testutil.NewScriptedModel(
		testutil.ScriptedTurn{Final: testutil.ToolCallResponse(
			core.FunctionCall{ID: "c1", Name: "save", Arguments: `{"text":"a"}`},
			core.FunctionCall{ID: "c2", Name: "save", Arguments: `{"text":"b"}`},
		)},
		testutil.ScriptedTurn{Final: testutil.TextResponse("done")},
	)
	agent := &testAgent{name: "bot", tools: tool.MustNewSet(saveTool)}

	store := artifact.NewInMemoryStore()
	state := core.NewState([]core.Message{core.NewUserMessage("save")}, nil, 10)
	rc := core.NewRunContext(context.Background(), "thread", "run", core.AgentInfo{Name: "bot"}, state, nil, store, logging.NoOpLogger{})

	require.NoError(t, NewStepLoop(agent, m).Run(rc))

	assert.Equal(t, []string{"a.docx", "b.docx"}, rc.Artifacts)
	ids, err := store.List("thread")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.docx", "b.docx"}, ids)
}
