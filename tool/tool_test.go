package tool

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/logging"
)

func newToolCtx(t *testing.T) *core.ToolContext {
	t.Helper()
	rc := core.NewRunContext(context.Background(), "thread", "run", core.AgentInfo{Name: "tester"}, nil, nil, nil, logging.NoOpLogger{})
	return core.NewToolContext(rc, "fc-1")
}

type greetArgs struct {
	Name  string `json:"name" description:"Who to greet"`
	Tone  string `json:"tone,omitempty" enum:"warm|formal"`
	Times int    `json:"times,omitempty" minimum:"0"`
}

func greetTool() *FunctionTool {
	return NewTypedTool("greet", "Greets someone", func(tc *core.ToolContext, args greetArgs) Result {
		if args.Name == "boom" {
			panic("kaboom")
		}
		tc.SetState("greeted", args.Name)
		return Success("greeted", map[string]any{"name": args.Name, "tone": args.Tone})
	})
}

// -------------------- Result --------------------

func TestResult_JSONShape(t *testing.T) {
	b, err := json.Marshal(Success("ok", map[string]any{"id": "1"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","message":"ok","data":{"id":"1"}}`, string(b))

	b, err = json.Marshal(Failuref("bad %d", 1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","message":"bad 1"}`, string(b))

	assert.True(t, FromError(errors.New("x")).IsError())
	assert.Equal(t, "m", FromError(NewToolError("t", "m", CodeExecution)).Message)
}

// -------------------- FunctionTool --------------------

func TestTypedTool_Schema(t *testing.T) {
	params := greetTool().Parameters()
	assert.Equal(t, []string{"name"}, params["required"])
	props := params["properties"].(map[string]any)
	assert.Equal(t, []string{"warm", "formal"}, props["tone"].(map[string]any)["enum"])
}

func TestTypedTool_SuccessAndState(t *testing.T) {
	tc := newToolCtx(t)
	res := greetTool().Call(tc, map[string]any{"name": "An", "tone": "warm"})
	require.False(t, res.IsError(), res.Message)
	assert.Equal(t, map[string]any{"name": "An", "tone": "warm"}, res.Data)
	assert.Equal(t, map[string]any{"greeted": "An"}, tc.Delta())
}

func TestTypedTool_ValidationFailures(t *testing.T) {
	tc := newToolCtx(t)
	tool := greetTool()

	res := tool.Call(tc, map[string]any{})
	assert.True(t, res.IsError())
	assert.Contains(t, res.Message, "name")

	res = tool.Call(tc, map[string]any{"name": "An", "tone": "rude"})
	assert.True(t, res.IsError())
	assert.Contains(t, res.Message, "tone")

	res = tool.Call(tc, map[string]any{"name": "An", "times": -2.0})
	assert.True(t, res.IsError())
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	ft := NewFunctionTool("fails", "always fails", map[string]any{"type": "object"}, func(*core.ToolContext, map[string]any) (Result, error) {
		return Result{}, errors.New("backend down")
	})
	res := ft.Call(newToolCtx(t), map[string]any{})
	assert.Equal(t, Failure("backend down"), res)
}

// -------------------- Set --------------------

func TestNewSet_RejectsDuplicatesAndEmpty(t *testing.T) {
	_, err := NewSet(greetTool(), greetTool())
	assert.Error(t, err)

	_, err = NewSet(NewFunctionTool("", "", nil, nil))
	assert.Error(t, err)

	empty, err := NewSet()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.Definitions())
}

func TestSet_DefinitionsInOrder(t *testing.T) {
	other := NewTypedTool("other", "other tool", func(*core.ToolContext, struct{}) Result { return Success("", nil) })
	s := MustNewSet(greetTool(), other)
	assert.Equal(t, []string{"greet", "other"}, s.Names())

	defs := s.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "greet", defs[0].Function.Name)
	assert.Equal(t, "Greets someone", defs[0].Function.Description)
	assert.Equal(t, "other", defs[1].Function.Name)

	_, ok := s.Lookup("other")
	assert.True(t, ok)
}

func TestSet_Execute(t *testing.T) {
	s := MustNewSet(greetTool())
	tc := newToolCtx(t)

	res := s.Execute(tc, core.FunctionCall{ID: "1", Name: "greet", Arguments: `{"name":"Bo"}`})
	assert.False(t, res.IsError())

	res = s.Execute(tc, core.FunctionCall{ID: "2", Name: "missing", Arguments: `{}`})
	assert.True(t, res.IsError())
	assert.Contains(t, res.Message, `unknown tool "missing"`)
	assert.Contains(t, res.Message, "greet")

	res = s.Execute(tc, core.FunctionCall{ID: "3", Name: "greet", Arguments: `{not json`})
	assert.True(t, res.IsError())
	assert.Contains(t, res.Message, "invalid JSON")

	res = s.Execute(tc, core.FunctionCall{ID: "4", Name: "greet", Arguments: ""})
	assert.True(t, res.IsError(), "empty arguments miss the required name")

	res = s.Execute(tc, core.FunctionCall{ID: "5", Name: "greet", Arguments: `{"name":"boom"}`})
	assert.True(t, res.IsError())
	assert.Contains(t, res.Message, "kaboom")
}

func TestSet_ConcurrentExecute(t *testing.T) {
	s := MustNewSet(greetTool())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.Execute(newToolCtx(t), core.FunctionCall{Name: "greet", Arguments: `{"name":"x"}`})
			assert.False(t, res.IsError())
		}()
	}
	wg.Wait()
}
