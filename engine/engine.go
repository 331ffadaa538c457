package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hupe1980/agentdesk/agent"
	"github.com/hupe1980/agentdesk/artifact"
	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/session"
)

// Config defines tuning parameters for the Engine.
type Config struct {
	// MaxConcurrentInvocations bounds the number of turns executing at the
	// same time. Invoke blocks until a slot is free. 0 means unlimited.
	MaxConcurrentInvocations int

	// MessageBufferSize sets the buffer of the message channel returned by
	// Invoke and of the internal emit channel.
	MessageBufferSize int
}

// DefaultConfig provides the default configuration values.
var DefaultConfig = Config{
	MaxConcurrentInvocations: 10,
	MessageBufferSize:        100,
}

// ModelResolver resolves model ids to clients.
type ModelResolver interface {
	Resolve(id string) (model.Model, error)
	Default() string
}

// Options configures an Engine instance.
type Options struct {
	Config Config

	// SessionStore persists threads between turns.
	SessionStore core.SessionStore

	// ArtifactStore receives documents generated by tools.
	ArtifactStore core.ArtifactStore

	// Callbacks are run at the lifecycle points of every turn.
	Callbacks *CallbackManager

	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Input selects agent, model and thread for one turn.
type Input struct {
	// AgentID names the agent; empty selects the registry default.
	AgentID string `json:"agent_id,omitempty"`
	// ModelID names the model; empty selects the model registry default.
	ModelID string `json:"model_id,omitempty"`
	// ThreadID continues a conversation; empty starts a new one.
	ThreadID string `json:"thread_id,omitempty"`
	// Message is the user message of this turn.
	Message string `json:"message"`
}

// Output is the result of a completed turn.
type Output struct {
	ThreadID string `json:"thread_id"`
	RunID    string `json:"run_id"`
	AgentID  string `json:"agent_id"`
	ModelID  string `json:"model_id"`
	// Messages is the full conversation after the turn.
	Messages []core.Message `json:"messages"`
	// NewMessages holds the user message and everything produced this turn.
	NewMessages []core.Message `json:"new_messages"`
	// Final is the last assistant message of the turn, if any.
	Final *core.Message `json:"final,omitempty"`
	// Visited is the step loop trace.
	Visited []string       `json:"visited"`
	Data    map[string]any `json:"data,omitempty"`
	// Artifacts lists the artifact ids stored for the thread.
	Artifacts []string `json:"artifacts,omitempty"`
	// NewArtifacts lists the artifact ids saved during this turn.
	NewArtifacts []string `json:"new_artifacts,omitempty"`
}

// Engine dispatches turns to agents and persists their results.
type Engine struct {
	agents        *agent.Registry
	models        ModelResolver
	sessionStore  core.SessionStore
	artifactStore core.ArtifactStore
	callbacks     *CallbackManager
	logger        logging.Logger
	config        Config

	slots chan struct{}

	activeRuns map[string]context.CancelFunc
	runsMu     sync.Mutex
}

// New creates an Engine over the given agent and model registries.
func New(agents *agent.Registry, models ModelResolver, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:        DefaultConfig,
		SessionStore:  session.NewInMemoryStore(),
		ArtifactStore: artifact.NewInMemoryStore(),
		Callbacks:     NewCallbackManager(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	e := &Engine{
		agents:        agents,
		models:        models,
		sessionStore:  opts.SessionStore,
		artifactStore: opts.ArtifactStore,
		callbacks:     opts.Callbacks,
		logger:        opts.Logger,
		config:        opts.Config,
		activeRuns:    make(map[string]context.CancelFunc),
	}
	if opts.Config.MaxConcurrentInvocations > 0 {
		e.slots = make(chan struct{}, opts.Config.MaxConcurrentInvocations)
	}

	return e
}

// ListAgents returns id and description of every agent.
func (e *Engine) ListAgents() []agent.Listing { return e.agents.List() }

// run tracks one turn. newMsgs and err are owned by the coordinating
// goroutine until done is closed.
type run struct {
	id       string
	agentID  string
	modelID  string
	threadID string
	runCtx   *core.RunContext
	newMsgs  []core.Message
	err      error
	done     chan struct{}
}

// Invoke starts one turn and streams its messages, partial chunks included.
// The error channel receives at most one terminal error; both channels are
// closed when the turn ends. Agent and model selection errors are returned
// directly and nothing is invoked.
func (e *Engine) Invoke(ctx context.Context, in Input) (string, <-chan core.Message, <-chan error, error) {
	r, msgs, errs, err := e.start(ctx, in)
	if err != nil {
		return "", nil, nil, err
	}

	return r.id, msgs, errs, nil
}

// InvokeSync runs one turn to completion.
func (e *Engine) InvokeSync(ctx context.Context, in Input) (*Output, error) {
	r, msgs, _, err := e.start(ctx, in)
	if err != nil {
		return nil, err
	}

	for range msgs {
	}
	<-r.done

	if r.err != nil {
		return nil, r.err
	}

	out := r.output()
	if ids, err := e.artifactStore.List(r.threadID); err == nil {
		out.Artifacts = ids
	}

	return out, nil
}

// Cancel stops a running turn.
func (e *Engine) Cancel(runID string) error {
	e.runsMu.Lock()
	cancel, ok := e.activeRuns[runID]
	e.runsMu.Unlock()

	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// GetSession returns a snapshot of a thread.
func (e *Engine) GetSession(threadID string) (*core.Session, error) {
	return e.sessionStore.Get(threadID)
}

func (e *Engine) start(ctx context.Context, in Input) (*run, <-chan core.Message, <-chan error, error) {
	agentID := in.AgentID
	if agentID == "" {
		agentID = e.agents.Default()
	}
	a, err := e.agents.Lookup(agentID)
	if err != nil {
		return nil, nil, nil, err
	}

	modelID := in.ModelID
	if modelID == "" {
		modelID = e.models.Default()
	}
	m, err := e.models.Resolve(modelID)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := e.acquire(ctx); err != nil {
		return nil, nil, nil, err
	}

	threadID := in.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	sess, err := e.sessionStore.Get(threadID)
	if err != nil {
		e.release()
		return nil, nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	userMsg := core.NewUserMessage(in.Message)
	if err := e.sessionStore.AppendMessages(threadID, userMsg); err != nil {
		e.release()
		return nil, nil, nil, fmt.Errorf("failed to append user message: %w", err)
	}

	runID := uuid.NewString()
	turnCtx, cancel := context.WithCancel(ctx)

	e.runsMu.Lock()
	e.activeRuns[runID] = cancel
	e.runsMu.Unlock()

	agentEmit := make(chan core.Message, e.config.MessageBufferSize)
	msgCh := make(chan core.Message, e.config.MessageBufferSize)
	errCh := make(chan error, 1)

	state := core.NewState(append(sess.History(), userMsg), sess.GetData(), a.MaxSteps())
	runCtx := core.NewRunContext(
		turnCtx,
		threadID,
		runID,
		core.AgentInfo{Name: a.Name(), Description: a.Description()},
		state,
		agentEmit,
		e.artifactStore,
		e.logger,
	)

	r := &run{
		id:       runID,
		agentID:  agentID,
		modelID:  modelID,
		threadID: threadID,
		runCtx:   runCtx,
		newMsgs:  []core.Message{userMsg},
		done:     make(chan struct{}),
	}

	e.logger.Info("engine.run.start", "run_id", runID, "thread_id", threadID, "agent", agentID, "model", modelID)

	go func() {
		defer func() {
			cancel()
			e.runsMu.Lock()
			delete(e.activeRuns, runID)
			e.runsMu.Unlock()
			e.release()
		}()

		runErr := make(chan error, 1)
		go func() {
			defer close(agentEmit)
			runErr <- e.runAgent(r, a, m)
		}()

		persistErr := e.processMessages(r, agentEmit, msgCh, cancel)

		err := <-runErr
		if persistErr != nil {
			err = persistErr
		}
		r.err = e.finish(r, err)

		if r.err != nil {
			errCh <- r.err
		}
		close(msgCh)
		close(errCh)
		close(r.done)
	}()

	return r, msgCh, errCh, nil
}

func (e *Engine) runAgent(r *run, a agent.Agent, m model.Model) error {
	cbCtx := &CallbackContext{RunContext: r.runCtx, AgentID: r.agentID, ModelID: r.modelID}
	if err := e.callbacks.ExecuteCallbacks(r.runCtx.Context, CallbackBeforeAgent, cbCtx); err != nil {
		return fmt.Errorf("before agent callback: %w", err)
	}

	return a.Run(r.runCtx, m)
}

// processMessages persists every complete message the agent emits and
// forwards all messages to the caller. A persistence failure cancels the
// run; remaining messages are drained so the agent can terminate.
func (e *Engine) processMessages(r *run, agentEmit <-chan core.Message, msgCh chan<- core.Message, cancel context.CancelFunc) error {
	ctx := r.runCtx.Context

	var persistErr error

	for msg := range agentEmit {
		if persistErr != nil {
			continue
		}

		if !msg.Partial {
			if err := e.sessionStore.AppendMessages(r.threadID, msg); err != nil {
				persistErr = fmt.Errorf("failed to append message to session: %w", err)
				cancel()
				continue
			}
			r.newMsgs = append(r.newMsgs, msg)

			cbCtx := &CallbackContext{RunContext: r.runCtx, Message: &msg, AgentID: r.agentID, ModelID: r.modelID}
			if err := e.callbacks.ExecuteCallbacks(ctx, CallbackOnMessage, cbCtx); err != nil {
				persistErr = fmt.Errorf("message callback: %w", err)
				cancel()
				continue
			}
		}

		select {
		case <-ctx.Done():
		case msgCh <- msg:
			e.logger.Debug("engine.message.delivered", "message_id", msg.ID, "thread_id", r.threadID, "partial", msg.Partial)
		}
	}

	return persistErr
}

// finish persists the data delta and runs the closing callbacks.
func (e *Engine) finish(r *run, runErr error) error {
	// The run context may be cancelled already; callbacks still run.
	ctx := context.WithoutCancel(r.runCtx.Context)

	cbCtx := &CallbackContext{RunContext: r.runCtx, AgentID: r.agentID, ModelID: r.modelID, Delta: r.runCtx.DataDelta}

	if len(r.runCtx.DataDelta) > 0 {
		if err := e.callbacks.ExecuteCallbacks(ctx, CallbackOnStateChange, cbCtx); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("state change rejected: %w", err))
		} else if err := e.sessionStore.ApplyDelta(r.threadID, r.runCtx.DataDelta); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to apply data delta: %w", err))
		}
	}

	if runErr != nil {
		cbCtx.Err = runErr
		_ = e.callbacks.ExecuteCallbacks(ctx, CallbackOnError, cbCtx)
		e.logger.Error("engine.run.error", "run_id", r.id, "thread_id", r.threadID, "error", runErr.Error())

		return runErr
	}

	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackAfterAgent, cbCtx); err != nil {
		return fmt.Errorf("after agent callback: %w", err)
	}

	e.logger.Info("engine.run.complete", "run_id", r.id, "thread_id", r.threadID, "visited", r.runCtx.Visited, "new_messages", len(r.newMsgs), "artifacts", r.runCtx.Artifacts)

	return nil
}

func (r *run) output() *Output {
	out := &Output{
		ThreadID:    r.threadID,
		RunID:       r.id,
		AgentID:     r.agentID,
		ModelID:     r.modelID,
		Messages:    append([]core.Message(nil), r.runCtx.State.Messages...),
		NewMessages: r.newMsgs,
		Visited:     append([]string(nil), r.runCtx.Visited...),
		Data:        r.runCtx.State.Data,
	}
	if len(r.runCtx.Artifacts) > 0 {
		out.NewArtifacts = append([]string(nil), r.runCtx.Artifacts...)
	}

	for i := len(r.newMsgs) - 1; i >= 0; i-- {
		if r.newMsgs[i].IsAssistant() {
			final := r.newMsgs[i]
			out.Final = &final
			break
		}
	}

	return out
}

func (e *Engine) acquire(ctx context.Context) error {
	if e.slots == nil {
		return nil
	}

	select {
	case e.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) release() {
	if e.slots != nil {
		<-e.slots
	}
}
