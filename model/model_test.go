package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdesk/core"
)

func TestFakeModel_CyclesResponses(t *testing.T) {
	m := NewFakeModel("a", "b")
	ctx := context.Background()

	var got []string
	for i := 0; i < 3; i++ {
		resp, err := Collect(ctx, m, Request{}, nil)
		require.NoError(t, err)
		got = append(got, resp.Content.Text())
	}
	assert.Equal(t, []string{"a", "b", "a"}, got)
	assert.Equal(t, 3, m.Calls())
}

func TestFakeModel_Defaults(t *testing.T) {
	m := NewFakeModel()
	assert.Same(t, m, m.BindTools(ToolDefinition{Function: FunctionDefinition{Name: "x"}}))

	resp, err := Collect(context.Background(), m, Request{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultFakeResponse, resp.Content.Text())
	assert.Equal(t, core.RoleAssistant, resp.Content.Role)
	assert.Empty(t, core.Message{Content: resp.Content}.FunctionCalls())
	assert.Equal(t, "fake", m.Info().Name)
}

func TestFakeModel_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Collect(ctx, NewFakeModel(), Request{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

type chunkModel struct {
	chunks []Response
	err    error
}

func (c chunkModel) Generate(context.Context, Request) (<-chan Response, <-chan error) {
	out := make(chan Response, len(c.chunks))
	errCh := make(chan error, 1)
	for _, ch := range c.chunks {
		out <- ch
	}
	if c.err != nil {
		errCh <- c.err
	}
	close(out)
	close(errCh)
	return out, errCh
}

func (c chunkModel) BindTools(...ToolDefinition) Model { return c }
func (c chunkModel) Info() Info                        { return Info{Name: "chunks"} }

func TestCollect_ForwardsPartials(t *testing.T) {
	m := chunkModel{chunks: []Response{
		{Partial: true, Content: core.NewTextContent(core.RoleAssistant, "he")},
		{Partial: true, Content: core.NewTextContent(core.RoleAssistant, "llo")},
		{Content: core.NewTextContent(core.RoleAssistant, "hello")},
	}}

	var partials []string
	resp, err := Collect(context.Background(), m, Request{}, func(r Response) error {
		partials = append(partials, r.Content.Text())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"he", "llo"}, partials)
	assert.Equal(t, "hello", resp.Content.Text())
}

func TestCollect_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Collect(context.Background(), chunkModel{err: boom}, Request{}, nil)
	assert.ErrorIs(t, err, boom)

	_, err = Collect(context.Background(), chunkModel{}, Request{}, nil)
	assert.ErrorIs(t, err, ErrNoFinalResponse)

	stop := errors.New("stop")
	m := chunkModel{chunks: []Response{{Partial: true}, {Partial: true}, {}}}
	_, err = Collect(context.Background(), m, Request{}, func(Response) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "plain", ResponseText("plain"))
	assert.Equal(t, `{"status":"success"}`, ResponseText(map[string]any{"status": "success"}))
}
