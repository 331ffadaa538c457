package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/model"
)

func newTestServer(t *testing.T, handler func(body map[string]any, w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		handler(body, w)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRequest() model.Request {
	call := core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "call_1", Name: "calculator", Arguments: `{"expression":"1+1"}`}}
	return model.Request{Contents: []core.Content{
		core.NewTextContent(core.RoleSystem, "be brief"),
		core.NewTextContent(core.RoleUser, "what is 1+1?"),
		{Role: core.RoleAssistant, Parts: []core.Part{call}},
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{
			ID: "call_1", Name: "calculator", Response: map[string]any{"status": "success"},
		}}}},
	}}
}

func TestModel_NonStreamingToolCall(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, func(body map[string]any, w http.ResponseWriter) {
		captured = body
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"",
			"tool_calls":[{"id":"call_2","type":"function","function":{"name":"web_search","arguments":"{\"query\":\"go\"}"}}]}}],
			"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`)
	})

	m := NewModel(func(o *Options) {
		o.BaseURL = srv.URL
		o.APIKey = "test"
		o.MaxRetries = 0
		o.Temperature = 0.5
	})
	bound := m.BindTools(model.ToolDefinition{Type: "function", Function: model.FunctionDefinition{
		Name: "web_search", Description: "search", Parameters: map[string]any{"type": "object", "properties": map[string]any{}},
	}})

	resp, err := model.Collect(context.Background(), bound, testRequest(), nil)
	require.NoError(t, err)

	calls := core.Message{Content: resp.Content}.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_2", calls[0].ID)
	assert.Equal(t, "web_search", calls[0].Name)
	assert.JSONEq(t, `{"query":"go"}`, calls[0].Arguments)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	assert.Equal(t, 5, resp.Usage.TotalTokens)

	assert.Equal(t, 0.5, captured["temperature"])
	tools, ok := captured["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 1)

	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	toolMsg := msgs[3].(map[string]any)
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "call_1", toolMsg["tool_call_id"])
	assert.JSONEq(t, `{"status":"success"}`, toolMsg["content"].(string))

	// the unbound model sends no tools
	_, err = model.Collect(context.Background(), m, testRequest(), nil)
	require.NoError(t, err)
	_, hasTools := captured["tools"]
	assert.False(t, hasTools)
}

func TestModel_Streaming(t *testing.T) {
	srv := newTestServer(t, func(body map[string]any, w http.ResponseWriter) {
		assert.Equal(t, true, body["stream"])
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"},"finish_reason":null}]}`,
			`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"lo"},"finish_reason":null}]}`,
			`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		}
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	m := NewModel(func(o *Options) {
		o.BaseURL = srv.URL
		o.APIKey = "test"
		o.MaxRetries = 0
		o.Streaming = true
		o.Provider = "ollama"
	})

	var partials []string
	resp, err := model.Collect(context.Background(), m, model.Request{Contents: []core.Content{
		core.NewTextContent(core.RoleUser, "hi"),
	}}, func(r model.Response) error {
		partials = append(partials, r.Content.Text())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, partials)
	assert.Equal(t, "Hello", resp.Content.Text())
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "c1", resp.ID)
	assert.Equal(t, model.Info{Name: "gpt-4o-mini", Provider: "ollama", SupportsTools: true, Streaming: true}, m.Info())
}

func TestModel_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.BaseURL = srv.URL
		o.APIKey = "bad"
		o.MaxRetries = 0
	})
	_, err := model.Collect(context.Background(), m, model.Request{Contents: []core.Content{core.NewTextContent(core.RoleUser, "hi")}}, nil)
	assert.Error(t, err)
}

func TestFinalParts_OrdersToolCallsByIndex(t *testing.T) {
	parts := finalParts("", map[int64]*aggCall{
		1: {index: 1, id: "b", name: "y"},
		0: {index: 0, id: "a", name: "x"},
	})
	calls := core.Message{Content: core.Content{Parts: parts}}.FunctionCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].ID)
	assert.Equal(t, "b", calls[1].ID)
}

func TestRequestOptions(t *testing.T) {
	assert.Empty(t, requestOptions(Options{MaxRetries: -1}))
	assert.Len(t, requestOptions(Options{BaseURL: "http://x", APIKey: "k", MaxRetries: 3, Timeout: 1}), 4)
	assert.Len(t, requestOptions(Options{AzureEndpoint: "https://x.openai.azure.com", AzureAPIVersion: "2024-06-01", APIKey: "k", MaxRetries: -1}), 2)
}
