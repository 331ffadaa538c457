package llm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdesk/config"
	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/model/anthropic"
	"github.com/hupe1980/agentdesk/model/openai"
)

func TestRegistry_Models(t *testing.T) {
	r := NewRegistry(&config.Settings{DefaultModel: "fake"})
	assert.Equal(t, []string{
		"gpt-4o-mini", "gpt-4o", "openai-compatible", "azure-gpt-4o", "azure-gpt-4o-mini",
		"gemini-1.5-flash", "gemini-2.0-flash", "claude-3.5-haiku", "claude-3.5-sonnet", "ollama", "fake",
	}, r.Models())
	assert.Equal(t, "fake", r.Default())
}

func TestRegistry_UnknownModel(t *testing.T) {
	_, err := NewRegistry(&config.Settings{}).Resolve("gpt-9")
	assert.ErrorIs(t, err, core.ErrUnsupportedModel)
}

func TestRegistry_MissingConfiguration(t *testing.T) {
	r := NewRegistry(&config.Settings{AzureOpenAIAPIKey: "k", AzureOpenAIEndpoint: "https://x", AzureOpenAIAPIVersion: "v"})
	for _, id := range []string{"gpt-4o", "openai-compatible", "azure-gpt-4o", "gemini-2.0-flash", "claude-3.5-sonnet", "ollama"} {
		_, err := r.Resolve(id)
		assert.ErrorIs(t, err, core.ErrMissingConfiguration, id)
	}
}

func TestRegistry_FakeIsMemoized(t *testing.T) {
	r := NewRegistry(&config.Settings{})

	var wg sync.WaitGroup
	got := make([]model.Model, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := r.Resolve("fake")
			assert.NoError(t, err)
			got[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range got[1:] {
		assert.Same(t, got[0], m)
	}
	_, ok := got[0].(*model.FakeModel)
	assert.True(t, ok)
}

func TestRegistry_ProviderOptions(t *testing.T) {
	r := NewRegistry(&config.Settings{
		OpenAIAPIKey:             "sk",
		AzureOpenAIAPIKey:        "az",
		AzureOpenAIEndpoint:      "https://example.openai.azure.com",
		AzureOpenAIAPIVersion:    "2024-10-21",
		AzureOpenAIDeploymentMap: map[string]string{"gpt-4o-mini": "mini-deploy"},
		GoogleAPIKey:             "g",
		AnthropicAPIKey:          "a",
		OllamaModel:              "llama3",
		OllamaBaseURL:            "http://ollama:11434/",
	})

	m, err := r.Resolve("azure-gpt-4o-mini")
	require.NoError(t, err)
	opts := m.(*openai.Model).Options()
	assert.Equal(t, "mini-deploy", opts.Model)
	assert.Equal(t, AzureMaxRetries, opts.MaxRetries)
	assert.Equal(t, AzureTimeout, opts.Timeout)
	assert.Equal(t, Temperature, opts.Temperature)
	assert.True(t, opts.Streaming)

	m, err = r.Resolve("gemini-1.5-flash")
	require.NoError(t, err)
	assert.Equal(t, GoogleBaseURL, m.(*openai.Model).Options().BaseURL)

	m, err = r.Resolve("ollama")
	require.NoError(t, err)
	assert.Equal(t, "http://ollama:11434/v1", m.(*openai.Model).Options().BaseURL)
	assert.Equal(t, "llama3", m.(*openai.Model).Options().Model)

	m, err = r.Resolve("claude-3.5-haiku")
	require.NoError(t, err)
	_, ok := m.(*anthropic.Model)
	assert.True(t, ok)

	m, err = r.Resolve("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Info().Provider)

	_, err = r.Resolve("azure-gpt-4o")
	assert.ErrorIs(t, err, core.ErrMissingConfiguration, "no deployment for gpt-4o")
}
