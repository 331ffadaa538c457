// Package research provides the research assistant: a web search and
// calculator equipped agent.
package research

import (
	"github.com/hupe1980/agentdesk/agent"
	"github.com/hupe1980/agentdesk/tool"
)

// ID is the registry id of the research assistant.
const ID = "research-assistant"

// Description is shown when listing agents.
const Description = "A research assistant with web search and calculator."

// Instructions is the system prompt. current_date is filled in per turn.
const Instructions = `You are a helpful research assistant with the ability to search the web and use other tools.
Today's date is {{.current_date}}.

NOTE: THE USER CAN'T SEE THE TOOL RESPONSE.

A few things to remember:
- Please include markdown-formatted links to any citations used in your response. Only include one
or two citations per response unless more are needed. ONLY USE LINKS RETURNED BY THE TOOLS.
- Use the calculator tool to answer math questions. The user does not read expression syntax,
so for the final response use a human readable format, e.g. "300 * 200", not "(300 \times 200)".
`

// Options configure the research assistant.
type Options struct {
	Searcher Searcher
	MaxSteps int
}

// New creates the research assistant.
func New(optFns ...func(o *Options)) (*agent.ModelAgent, error) {
	opts := Options{MaxSteps: agent.DefaultMaxSteps}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Searcher == nil {
		opts.Searcher = NewDuckDuckGo()
	}

	return agent.NewModelAgent(ID, func(o *agent.ModelAgentOptions) {
		o.Description = Description
		o.Instruction = agent.NewInstructionFromText(Instructions)
		o.Tools = []tool.Tool{NewWebSearchTool(opts.Searcher), NewCalculatorTool()}
		o.MaxSteps = opts.MaxSteps
	})
}
