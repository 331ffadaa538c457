package chatbot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/flow"
	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/model"
)

func TestChatbot_FakeModel(t *testing.T) {
	a, err := New(10)
	require.NoError(t, err)
	assert.Equal(t, 0, a.GetTools().Len())

	state := core.NewState([]core.Message{core.NewUserMessage("hello")}, nil, a.MaxSteps())
	rc := core.NewRunContext(context.Background(), "t", "r", core.AgentInfo{Name: ID}, state, nil, nil, logging.NoOpLogger{})

	require.NoError(t, a.Run(rc, model.NewFakeModel()))

	assert.Equal(t, []string{flow.NodeModel, flow.NodeDone}, rc.Visited)
	last, ok := rc.State.Last()
	require.True(t, ok)
	assert.Equal(t, model.DefaultFakeResponse, last.Text())
	assert.Equal(t, core.RoleAssistant, last.Role())
}
