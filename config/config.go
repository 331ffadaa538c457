// Package config loads agentdesk settings from the process environment and
// optional .env files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultOutputDir         = "output"
	DefaultFundingTemplate   = "assets/template_to_trinh_xin_mua_sam_thiet_bi.docx"
	DefaultAzureAPIVersion   = "2024-10-21"
	DefaultMaxSteps          = 25
	DefaultMaxConcurrentRuns = 8
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// Settings holds every configurable value of the process.
type Settings struct {
	LogLevel  string
	LogFormat string
	LogSource bool

	// DefaultModel is used when an invocation names no model.
	DefaultModel string
	UseFakeModel bool

	OpenAIAPIKey string

	CompatibleBaseURL string
	CompatibleAPIKey  string
	CompatibleModel   string

	AzureOpenAIAPIKey     string
	AzureOpenAIEndpoint   string
	AzureOpenAIAPIVersion string
	// AzureOpenAIDeploymentMap maps a base model name (gpt-4o, gpt-4o-mini)
	// to the Azure deployment serving it.
	AzureOpenAIDeploymentMap map[string]string

	GoogleAPIKey    string
	AnthropicAPIKey string

	OllamaModel   string
	OllamaBaseURL string

	OutputDir           string
	FundingTemplatePath string
	WebSearchEndpoint   string

	MaxSteps          int
	MaxConcurrentRuns int
}

// LoadOptions configure Load.
type LoadOptions struct {
	// EnvFiles are read in order; values already present in the process
	// environment win. Missing files are skipped.
	EnvFiles []string
	// LookupEnv reads the process environment.
	LookupEnv func(key string) (string, bool)
}

// Load builds Settings from the environment.
func Load(optFns ...func(o *LoadOptions)) (*Settings, error) {
	opts := LoadOptions{
		EnvFiles:  []string{".env"},
		LookupEnv: os.LookupEnv,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	fileVals := map[string]string{}
	for _, f := range opts.EnvFiles {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read env file %s: %w", f, err)
		}
		for k, v := range vals {
			if _, seen := fileVals[k]; !seen {
				fileVals[k] = v
			}
		}
	}

	env := func(key, def string) string {
		if v, ok := opts.LookupEnv(key); ok && v != "" {
			return strings.TrimSpace(v)
		}
		if v, ok := fileVals[key]; ok && v != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	s := &Settings{
		LogLevel:              env("LOG_LEVEL", DefaultLogLevel),
		LogFormat:             env("LOG_FORMAT", DefaultLogFormat),
		LogSource:             misc.Truthy(env("LOG_SOURCE", "")),
		DefaultModel:          env("DEFAULT_MODEL", ""),
		UseFakeModel:          misc.Truthy(env("USE_FAKE_MODEL", "")),
		OpenAIAPIKey:          env("OPENAI_API_KEY", ""),
		CompatibleBaseURL:     env("COMPATIBLE_BASE_URL", ""),
		CompatibleAPIKey:      env("COMPATIBLE_API_KEY", ""),
		CompatibleModel:       env("COMPATIBLE_MODEL", ""),
		AzureOpenAIAPIKey:     env("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIEndpoint:   env("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIVersion: env("AZURE_OPENAI_API_VERSION", DefaultAzureAPIVersion),
		GoogleAPIKey:          env("GOOGLE_API_KEY", ""),
		AnthropicAPIKey:       env("ANTHROPIC_API_KEY", ""),
		OllamaModel:           env("OLLAMA_MODEL", ""),
		OllamaBaseURL:         env("OLLAMA_BASE_URL", ""),
		OutputDir:             env("OUTPUT_DIR", DefaultOutputDir),
		FundingTemplatePath:   env("FUNDING_TEMPLATE_PATH", DefaultFundingTemplate),
		WebSearchEndpoint:     env("WEB_SEARCH_ENDPOINT", ""),
	}

	var err error
	if s.MaxSteps, err = envInt(env, "MAX_STEPS", DefaultMaxSteps); err != nil {
		return nil, err
	}
	if s.MaxConcurrentRuns, err = envInt(env, "MAX_CONCURRENT_RUNS", DefaultMaxConcurrentRuns); err != nil {
		return nil, err
	}

	s.AzureOpenAIDeploymentMap = map[string]string{}
	if raw := env("AZURE_OPENAI_DEPLOYMENT_MAP", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.AzureOpenAIDeploymentMap); err != nil {
			return nil, fmt.Errorf("AZURE_OPENAI_DEPLOYMENT_MAP must be a JSON object: %w", err)
		}
	}

	if s.DefaultModel == "" {
		s.DefaultModel = s.inferDefaultModel()
	}

	return s, nil
}

// inferDefaultModel picks the first provider that has credentials.
func (s *Settings) inferDefaultModel() string {
	switch {
	case s.UseFakeModel:
		return "fake"
	case s.OpenAIAPIKey != "":
		return "gpt-4o-mini"
	case s.AzureOpenAIAPIKey != "" && s.AzureOpenAIDeploymentMap["gpt-4o-mini"] != "":
		return "azure-gpt-4o-mini"
	case s.AzureOpenAIAPIKey != "" && s.AzureOpenAIDeploymentMap["gpt-4o"] != "":
		return "azure-gpt-4o"
	case s.AnthropicAPIKey != "":
		return "claude-3.5-haiku"
	case s.GoogleAPIKey != "":
		return "gemini-1.5-flash"
	case s.CompatibleBaseURL != "" && s.CompatibleModel != "":
		return "openai-compatible"
	case s.OllamaModel != "":
		return "ollama"
	default:
		return "fake"
	}
}

func envInt(env func(string, string) string, key string, def int) (int, error) {
	raw := env(key, "")
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}

	return n, nil
}
