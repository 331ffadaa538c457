// Package chatbot provides the plain conversational agent.
package chatbot

import "github.com/hupe1980/agentdesk/agent"

// ID is the registry id of the chatbot.
const ID = "chatbot"

// Description is shown when listing agents.
const Description = "A simple chatbot."

// New creates the chatbot. It has no instructions and no tools, so the
// model sees the bare conversation.
func New(maxSteps int) (*agent.ModelAgent, error) {
	return agent.NewModelAgent(ID, func(o *agent.ModelAgentOptions) {
		o.Description = Description
		o.MaxSteps = maxSteps
	})
}
