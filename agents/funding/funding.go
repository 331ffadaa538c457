// Package funding provides the economic report assistant that drafts
// funding request documents.
package funding

import (
	"github.com/hupe1980/agentdesk/agent"
	"github.com/hupe1980/agentdesk/tool"
)

// ID is the registry id of the funding assistant.
const ID = "economic-report-assistant"

// Description is shown when listing agents.
const Description = "A economic report assistant."

// Instructions is the system prompt. current_date is filled in per turn.
const Instructions = `Bạn là một trợ lí ảo giỏi với khả năng tạo tờ trình xin kinh phí.

Ngày hôm nay là {{.current_date}}.

LƯU Ý: NGƯỜI DÙNG KHÔNG THỂ NHÌN THẤY PHẢN HỒI CỦA CÔNG CỤ.

Một số lưu ý khác:
- Trả lời bằng tiếng việt
- Không đưa ra đường dẫn docx
`

// Options configure the funding assistant.
type Options struct {
	TemplatePath string
	OutputDir    string
	MaxSteps     int
}

// New creates the funding assistant.
func New(optFns ...func(o *Options)) (*agent.ModelAgent, error) {
	opts := Options{MaxSteps: agent.DefaultMaxSteps, OutputDir: "output"}
	for _, fn := range optFns {
		fn(&opts)
	}

	docTool := NewDocumentTool(func(o *ToolOptions) {
		o.TemplatePath = opts.TemplatePath
		o.OutputDir = opts.OutputDir
	})

	return agent.NewModelAgent(ID, func(o *agent.ModelAgentOptions) {
		o.Description = Description
		o.Instruction = agent.NewInstructionFromText(Instructions)
		o.Tools = []tool.Tool{docTool}
		o.MaxSteps = opts.MaxSteps
	})
}
