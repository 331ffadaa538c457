package flow

import (
	"sync"
	"time"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/tool"
)

// FunctionResult is the outcome of one tool call of a round.
type FunctionResult struct {
	Call      core.FunctionCall
	Result    tool.Result
	Delta     map[string]any
	Artifacts []string
	Duration  time.Duration
}

// FunctionExecutor executes a batch of function/tool calls possibly in parallel.
// Implementations must:
//   - Respect runCtx.Context cancellation
//   - Never panic
//   - Return exactly one FunctionResult per incoming FunctionCall, in call order
type FunctionExecutor interface {
	Execute(runCtx *core.RunContext, tools *tool.Set, fnCalls []core.FunctionCall) []FunctionResult
}

// FunctionExecutorConfig configures the default parallel executor.
type FunctionExecutorConfig struct {
	MaxParallel    int  // 0 or <1 => no explicit limit (len(fnCalls))
	LogStartEvents bool // log a start line per function
}

// parallelFunctionExecutor is the default implementation.
type parallelFunctionExecutor struct {
	cfg FunctionExecutorConfig
}

// NewParallelFunctionExecutor constructs a new executor with the given config.
func NewParallelFunctionExecutor(cfg FunctionExecutorConfig) FunctionExecutor {
	return &parallelFunctionExecutor{cfg: cfg}
}

func (e *parallelFunctionExecutor) Execute(
	runCtx *core.RunContext,
	tools *tool.Set,
	fnCalls []core.FunctionCall,
) []FunctionResult {
	n := len(fnCalls)
	results := make([]FunctionResult, n)
	if n == 0 {
		return results
	}

	// Fast path: single call, execute inline.
	if n == 1 {
		results[0] = e.executeOne(runCtx, tools, fnCalls[0])
		return results
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range fnCalls {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, fc core.FunctionCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.executeOne(runCtx, tools, fc)
		}(i, fnCalls[i])
	}

	wg.Wait()

	runCtx.LogDebug(
		"agent.functions.batch.complete",
		"agent", runCtx.Agent.Name,
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return results
}

func (e *parallelFunctionExecutor) executeOne(runCtx *core.RunContext, tools *tool.Set, fc core.FunctionCall) FunctionResult {
	if err := runCtx.Err(); err != nil {
		return FunctionResult{Call: fc, Result: tool.Failuref("tool call cancelled: %v", err)}
	}

	toolCtx := core.NewToolContext(runCtx, fc.ID)
	if e.cfg.LogStartEvents {
		runCtx.LogInfo("agent.function.start", "agent", runCtx.Agent.Name, "function", fc.Name, "function_call_id", fc.ID)
	}

	start := time.Now()
	res := tools.Execute(toolCtx, fc)
	dur := time.Since(start)

	runCtx.LogInfo(
		"agent.function.executed",
		"agent", runCtx.Agent.Name,
		"function", fc.Name,
		"duration_ms", dur.Milliseconds(),
		"error", res.IsError(),
	)

	return FunctionResult{Call: fc, Result: res, Delta: toolCtx.Delta(), Artifacts: toolCtx.Artifacts(), Duration: dur}
}
