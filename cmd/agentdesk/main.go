package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"

	"github.com/hupe1980/agentdesk"
	"github.com/hupe1980/agentdesk/engine"
)

const usage = `agentdesk - chat assistants backed by pluggable LLM providers

Configuration is read from the environment and from ./.env. Set one of
OPENAI_API_KEY, AZURE_OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY,
COMPATIBLE_BASE_URL or OLLAMA_MODEL, or USE_FAKE_MODEL=true for offline use.

Usage: agentdesk <command> [flags]

Commands:
  agents                        List the available agents
  models                        List the known model ids
  chat [flags] <message>        Run one turn and print the final answer

Chat flags:
  -agent string     Agent id (default: research-assistant)
  -model string     Model id (default: inferred from configuration)
  -thread string    Continue a thread (default: new thread)
  -json bool        Print the whole turn as JSON
`

func main() {
	ancli.SetupSlog()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Print(usage)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { shutdown.Monitor(cancel) }()

	var err error
	switch args[0] {
	case "h", "help", "-h", "--help":
		fmt.Print(usage)
		return 0
	case "agents":
		err = listAgents()
	case "models":
		err = listModels()
	case "chat":
		err = chat(ctx, args[1:])
	default:
		ancli.PrintErr(fmt.Sprintf("unknown command: %q\n", args[0]))
		fmt.Print(usage)
		return 1
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			ancli.Okf("cancelled\n")
			return 0
		}
		ancli.PrintErr(fmt.Sprintf("failed to run: %v\n", err))
		return 1
	}

	return 0
}

func listAgents() error {
	desk, err := agentdesk.New()
	if err != nil {
		return err
	}

	for _, a := range desk.Agents() {
		marker := " "
		if a.ID == desk.DefaultAgent() {
			marker = "*"
		}
		fmt.Printf("%s %-28s %s\n", marker, a.ID, a.Description)
	}

	return nil
}

func listModels() error {
	desk, err := agentdesk.New()
	if err != nil {
		return err
	}

	for _, id := range desk.Models() {
		marker := " "
		if id == desk.DefaultModel() {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, id)
	}

	return nil
}

func chat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	agentID := fs.String("agent", "", "agent id")
	modelID := fs.String("model", "", "model id")
	threadID := fs.String("thread", "", "thread id")
	asJSON := fs.Bool("json", false, "print the turn as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		return errors.New("chat requires a message")
	}

	desk, err := agentdesk.New()
	if err != nil {
		return err
	}

	out, err := desk.InvokeSync(ctx, engine.Input{
		AgentID:  *agentID,
		ModelID:  *modelID,
		ThreadID: *threadID,
		Message:  message,
	})
	if err != nil {
		return err
	}

	if *asJSON {
		fmt.Println(debug.IndentedJsonFmt(out))
		return nil
	}

	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.Noticef("thread: %v, run: %v, visited: %v\n", out.ThreadID, out.RunID, out.Visited)
	}

	if out.Final != nil {
		fmt.Println(out.Final.Text())
	}
	if path, ok := out.Data["docx"].(string); ok && path != "" {
		ancli.PrintOK(fmt.Sprintf("document: %v\n", path))
	}
	ancli.Okf("thread: %v\n", out.ThreadID)

	return nil
}
