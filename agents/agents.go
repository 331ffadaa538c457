// Package agents assembles the built-in agents into an agent.Registry.
package agents

import (
	"github.com/hupe1980/agentdesk/agent"
	"github.com/hupe1980/agentdesk/agents/chatbot"
	"github.com/hupe1980/agentdesk/agents/funding"
	"github.com/hupe1980/agentdesk/agents/research"
	"github.com/hupe1980/agentdesk/agents/sales"
	"github.com/hupe1980/agentdesk/config"
)

// DefaultAgent is used when an invocation names no agent.
const DefaultAgent = research.ID

// Options override the backends of the built-in agents.
type Options struct {
	Searcher      research.Searcher
	Customers     sales.CustomerDirectory
	Opportunities sales.OpportunityStore
}

// NewRegistry builds the registry of built-in agents in listing order:
// chatbot, research-assistant, chb-assistant, economic-report-assistant.
func NewRegistry(settings *config.Settings, optFns ...func(o *Options)) (*agent.Registry, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Searcher == nil && settings.WebSearchEndpoint != "" {
		opts.Searcher = research.NewDuckDuckGo(func(o *research.DuckDuckGoOptions) {
			o.Endpoint = settings.WebSearchEndpoint
		})
	}

	bot, err := chatbot.New(settings.MaxSteps)
	if err != nil {
		return nil, err
	}

	researcher, err := research.New(func(o *research.Options) {
		o.Searcher = opts.Searcher
		o.MaxSteps = settings.MaxSteps
	})
	if err != nil {
		return nil, err
	}

	seller, err := sales.New(func(o *sales.Options) {
		o.Customers = opts.Customers
		o.Opportunities = opts.Opportunities
		o.MaxSteps = settings.MaxSteps
	})
	if err != nil {
		return nil, err
	}

	reporter, err := funding.New(func(o *funding.Options) {
		o.TemplatePath = settings.FundingTemplatePath
		o.OutputDir = settings.OutputDir
		o.MaxSteps = settings.MaxSteps
	})
	if err != nil {
		return nil, err
	}

	return agent.NewRegistry(DefaultAgent, bot, researcher, seller, reporter)
}
