// Package llm maps public model ids to concrete model.Model clients.
package llm

import (
	"fmt"
	"strings"
	"sync"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentdesk/config"
	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/model/anthropic"
	"github.com/hupe1980/agentdesk/model/openai"
)

// Provider names a backend family.
type Provider string

// Supported providers.
const (
	ProviderOpenAI           Provider = "openai"
	ProviderOpenAICompatible Provider = "openai_compatible"
	ProviderAzureOpenAI      Provider = "azure_openai"
	ProviderGoogle           Provider = "google"
	ProviderAnthropic        Provider = "anthropic"
	ProviderOllama           Provider = "ollama"
	ProviderFake             Provider = "fake"
)

// Temperature is applied to every provider client.
const Temperature = 0.5

// Azure clients retry and time out more conservatively.
const (
	AzureMaxRetries = 3
	AzureTimeout    = 60 * time.Second
)

// GoogleBaseURL is Gemini's OpenAI compatible endpoint.
const GoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// DefaultOllamaBaseURL is used when no Ollama base URL is configured.
const DefaultOllamaBaseURL = "http://localhost:11434"

// Entry is one row of the model table.
type Entry struct {
	ID       string
	Provider Provider
	// APIModel is the provider-side model name. For Azure it is the base
	// model name looked up in the deployment map.
	APIModel string
}

// Table lists every known model id in presentation order.
var Table = []Entry{
	{ID: "gpt-4o-mini", Provider: ProviderOpenAI, APIModel: "gpt-4o-mini"},
	{ID: "gpt-4o", Provider: ProviderOpenAI, APIModel: "gpt-4o"},
	{ID: "openai-compatible", Provider: ProviderOpenAICompatible},
	{ID: "azure-gpt-4o", Provider: ProviderAzureOpenAI, APIModel: "gpt-4o"},
	{ID: "azure-gpt-4o-mini", Provider: ProviderAzureOpenAI, APIModel: "gpt-4o-mini"},
	{ID: "gemini-1.5-flash", Provider: ProviderGoogle, APIModel: "gemini-1.5-flash"},
	{ID: "gemini-2.0-flash", Provider: ProviderGoogle, APIModel: "gemini-2.0-flash"},
	{ID: "claude-3.5-haiku", Provider: ProviderAnthropic, APIModel: "claude-3-5-haiku-latest"},
	{ID: "claude-3.5-sonnet", Provider: ProviderAnthropic, APIModel: "claude-3-5-sonnet-latest"},
	{ID: "ollama", Provider: ProviderOllama},
	{ID: "fake", Provider: ProviderFake},
}

// Registry resolves model ids to clients and caches them per id.
type Registry struct {
	settings *config.Settings
	logger   logging.Logger

	mu    sync.Mutex
	cache map[string]model.Model
}

// Options configure a Registry.
type Options struct {
	Logger logging.Logger
}

// NewRegistry creates a registry over the given settings.
func NewRegistry(settings *config.Settings, optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		settings: settings,
		logger:   opts.Logger,
		cache:    make(map[string]model.Model),
	}
}

// Models returns all known model ids in table order.
func (r *Registry) Models() []string {
	ids := make([]string, 0, len(Table))
	for _, e := range Table {
		ids = append(ids, e.ID)
	}

	return ids
}

// Default returns the configured default model id.
func (r *Registry) Default() string { return r.settings.DefaultModel }

// Lookup returns the table entry for id.
func Lookup(id string) (Entry, bool) {
	for _, e := range Table {
		if e.ID == id {
			return e, true
		}
	}

	return Entry{}, false
}

// Resolve returns the client for id, constructing it on first use.
// Configuration is validated at resolution time.
func (r *Registry) Resolve(id string) (model.Model, error) {
	entry, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedModel, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.cache[id]; ok {
		return m, nil
	}

	m, err := r.build(entry)
	if err != nil {
		r.logger.Warn("llm.resolve.error", "model", id, "error", err.Error())
		return nil, err
	}

	r.cache[id] = m
	r.logger.Debug("llm.resolve.created", "model", id, "provider", string(entry.Provider))

	return m, nil
}

func (r *Registry) build(e Entry) (model.Model, error) {
	s := r.settings

	switch e.Provider {
	case ProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return nil, missing(e.ID, "OPENAI_API_KEY")
		}
		return openai.NewModel(func(o *openai.Options) {
			o.Model = e.APIModel
			o.Provider = string(e.Provider)
			o.APIKey = s.OpenAIAPIKey
			o.Temperature = Temperature
			o.Streaming = true
		}), nil

	case ProviderOpenAICompatible:
		if s.CompatibleBaseURL == "" || s.CompatibleModel == "" {
			return nil, missing(e.ID, "COMPATIBLE_BASE_URL", "COMPATIBLE_MODEL")
		}
		return openai.NewModel(func(o *openai.Options) {
			o.Model = s.CompatibleModel
			o.Provider = string(e.Provider)
			o.BaseURL = s.CompatibleBaseURL
			o.APIKey = s.CompatibleAPIKey
			o.Temperature = Temperature
			o.Streaming = true
		}), nil

	case ProviderAzureOpenAI:
		deployment := s.AzureOpenAIDeploymentMap[e.APIModel]
		if s.AzureOpenAIAPIKey == "" || s.AzureOpenAIEndpoint == "" || s.AzureOpenAIAPIVersion == "" || deployment == "" {
			return nil, missing(e.ID, "AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_API_VERSION",
				fmt.Sprintf("AZURE_OPENAI_DEPLOYMENT_MAP[%s]", e.APIModel))
		}
		return openai.NewModel(func(o *openai.Options) {
			o.Model = deployment
			o.Provider = string(e.Provider)
			o.APIKey = s.AzureOpenAIAPIKey
			o.AzureEndpoint = s.AzureOpenAIEndpoint
			o.AzureAPIVersion = s.AzureOpenAIAPIVersion
			o.MaxRetries = AzureMaxRetries
			o.Timeout = AzureTimeout
			o.Temperature = Temperature
			o.Streaming = true
		}), nil

	case ProviderGoogle:
		if s.GoogleAPIKey == "" {
			return nil, missing(e.ID, "GOOGLE_API_KEY")
		}
		return openai.NewModel(func(o *openai.Options) {
			o.Model = e.APIModel
			o.Provider = string(e.Provider)
			o.BaseURL = GoogleBaseURL
			o.APIKey = s.GoogleAPIKey
			o.Temperature = Temperature
			o.Streaming = true
		}), nil

	case ProviderAnthropic:
		if s.AnthropicAPIKey == "" {
			return nil, missing(e.ID, "ANTHROPIC_API_KEY")
		}
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(e.APIModel)
			o.APIKey = s.AnthropicAPIKey
			o.Temperature = Temperature
			o.Streaming = true
		}), nil

	case ProviderOllama:
		if s.OllamaModel == "" {
			return nil, missing(e.ID, "OLLAMA_MODEL")
		}
		base := s.OllamaBaseURL
		if base == "" {
			base = DefaultOllamaBaseURL
		}
		return openai.NewModel(func(o *openai.Options) {
			o.Model = s.OllamaModel
			o.Provider = string(e.Provider)
			o.BaseURL = strings.TrimRight(base, "/") + "/v1"
			// Ollama ignores the key but the SDK requires one.
			o.APIKey = "ollama"
			o.Temperature = Temperature
			o.Streaming = true
		}), nil

	case ProviderFake:
		return model.NewFakeModel(), nil
	}

	return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedModel, e.ID)
}

func missing(id string, fields ...string) error {
	return fmt.Errorf("%w: model %q requires %s", core.ErrMissingConfiguration, id, strings.Join(fields, ", "))
}
