// Package agentdesk provides a high-level façade over the Engine, the
// built-in agents and the model registry. Most applications interact with
// this package by:
//  1. Creating an AgentDesk via New() (settings are loaded from the
//     environment unless supplied)
//  2. Listing agents and models to choose from
//  3. Invoking an agent asynchronously (Invoke) or synchronously (InvokeSync)
//
// All stores default to in-memory implementations.
package agentdesk

import (
	"context"

	"github.com/hupe1980/agentdesk/agent"
	"github.com/hupe1980/agentdesk/agents"
	"github.com/hupe1980/agentdesk/artifact"
	"github.com/hupe1980/agentdesk/config"
	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/engine"
	"github.com/hupe1980/agentdesk/llm"
	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/session"
)

// Options configures the AgentDesk instance.
type Options struct {
	// Settings defaults to config.Load().
	Settings *config.Settings

	// EngineConfig defaults to engine.DefaultConfig with the concurrency
	// limit taken from Settings.MaxConcurrentRuns.
	EngineConfig *engine.Config

	SessionStore  core.SessionStore
	ArtifactStore core.ArtifactStore

	// Callbacks are added after the built-in logging callbacks.
	Callbacks []engine.Callback

	// Agents override backends of the built-in agents.
	Agents []func(o *agents.Options)

	// Logger defaults to a slog logger configured from Settings.
	Logger logging.Logger
}

// AgentDesk is the high-level façade aggregating the engine and registries.
type AgentDesk struct {
	settings *config.Settings
	models   *llm.Registry
	agents   *agent.Registry
	engine   *engine.Engine
	logger   logging.Logger
}

// New creates a new AgentDesk instance with optional overrides.
func New(optFns ...func(o *Options)) (*AgentDesk, error) {
	opts := Options{
		SessionStore:  session.NewInMemoryStore(),
		ArtifactStore: artifact.NewInMemoryStore(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Settings == nil {
		s, err := config.Load()
		if err != nil {
			return nil, err
		}
		opts.Settings = s
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewSlogLogger(
			logging.ParseLevel(opts.Settings.LogLevel),
			opts.Settings.LogFormat,
			opts.Settings.LogSource,
		)
	}

	engineCfg := engine.DefaultConfig
	if opts.Settings.MaxConcurrentRuns > 0 {
		engineCfg.MaxConcurrentInvocations = opts.Settings.MaxConcurrentRuns
	}
	if opts.EngineConfig != nil {
		engineCfg = *opts.EngineConfig
	}

	agentRegistry, err := agents.NewRegistry(opts.Settings, opts.Agents...)
	if err != nil {
		return nil, err
	}

	models := llm.NewRegistry(opts.Settings, func(o *llm.Options) {
		o.Logger = opts.Logger
	})

	callbacks := engine.NewCallbackManager()
	callbacks.RegisterCallback(engine.NewLoggingCallback(engine.CallbackAfterAgent, opts.Logger))
	callbacks.RegisterCallback(engine.NewLoggingCallback(engine.CallbackOnError, opts.Logger))
	for _, cb := range opts.Callbacks {
		callbacks.RegisterCallback(cb)
	}

	e := engine.New(agentRegistry, models, func(o *engine.Options) {
		o.Config = engineCfg
		o.SessionStore = opts.SessionStore
		o.ArtifactStore = opts.ArtifactStore
		o.Callbacks = callbacks
		o.Logger = opts.Logger
	})

	return &AgentDesk{
		settings: opts.Settings,
		models:   models,
		agents:   agentRegistry,
		engine:   e,
		logger:   opts.Logger,
	}, nil
}

// Agents lists the available agents in registration order.
func (d *AgentDesk) Agents() []agent.Listing { return d.engine.ListAgents() }

// DefaultAgent returns the agent used when an invocation names none.
func (d *AgentDesk) DefaultAgent() string { return d.agents.Default() }

// Models lists the known model ids.
func (d *AgentDesk) Models() []string { return d.models.Models() }

// DefaultModel returns the model used when an invocation names none.
func (d *AgentDesk) DefaultModel() string { return d.models.Default() }

// Settings returns the effective settings.
func (d *AgentDesk) Settings() *config.Settings { return d.settings }

// Engine exposes the underlying engine.
func (d *AgentDesk) Engine() *engine.Engine { return d.engine }

// Invoke starts an asynchronous turn returning message and error channels.
func (d *AgentDesk) Invoke(ctx context.Context, in engine.Input) (string, <-chan core.Message, <-chan error, error) {
	return d.engine.Invoke(ctx, in)
}

// InvokeSync runs one turn to completion.
func (d *AgentDesk) InvokeSync(ctx context.Context, in engine.Input) (*engine.Output, error) {
	return d.engine.InvokeSync(ctx, in)
}

// Cancel stops a running turn.
func (d *AgentDesk) Cancel(runID string) error { return d.engine.Cancel(runID) }
