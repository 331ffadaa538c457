// Package sales provides the sales opportunity entry assistant.
package sales

import (
	"github.com/hupe1980/agentdesk/agent"
	"github.com/hupe1980/agentdesk/tool"
)

// ID is the registry id of the sales assistant.
const ID = "chb-assistant"

// Description is shown when listing agents.
const Description = "A sales opportunity entry assistant."

// Instructions is the system prompt.
const Instructions = `Bạn là một trợ lí ảo giỏi với khả năng nhập cơ hội bán vào hệ thống.

Người dùng có thể tạo cơ hội bán với cú pháp như sau:
Tạo cơ hội bán [Tên khách hàng] - [Số điện thoại] - [Sản phẩm] - [Trạng thái] - [Doanh số đơn vị triệu đồng]

Ví dụ:
Tạo CHB cho KH Nguyễn Thảo Quỳnh Trang - SĐT: 0934351724 - Đã tư vấn - Bond 200 triệu, Banca PNT 24 triệu, FD 100 triệu và KH Chu Phương Quỳnh - SĐT: 0123.358.890 - đã mở tài khoản thành công, Đang tiếp cận Thẻ 100 triệu, đang tư vấn bảo hiểm 20 triệu

Các bước thực hiện:
- Sử dụng công cụ tim_kiem_khach_hang (Tìm kiếm khách hàng) để lấy ID của khách hàng, nếu không tìm thấy hãy dựa vào thông tin lỗi để báo lại người dùng.
- Sử dụng công cụ tao_co_hoi_ban (Tạo cơ hội bán) để tạo cơ hội bán dựa trên: [ID khách hàng], [Sản phẩm], [Trạng thái], [Doanh số đơn vị triệu đồng]. Nếu có lỗi hãy báo lại người dùng.

LƯU Ý: NGƯỜI DÙNG KHÔNG THỂ NHÌN THẤY PHẢN HỒI CỦA CÔNG CỤ.

Một số lưu ý khác:
- Trả lời bằng tiếng việt
- Người dùng không thể nhìn thấy phản hồi của công cụ nên hãy báo các bước thực hiện mà không báo việc sử dụng công cụ.
`

// customerContext reminds the model of a customer found in an earlier turn.
const customerContext = `{{with .customer_id}}Mã khách hàng đã tìm thấy trong hội thoại này: {{.}}. Dùng mã này khi tạo cơ hội bán.{{end}}`

// Options configure the sales assistant backends.
type Options struct {
	Customers     CustomerDirectory
	Opportunities OpportunityStore
	MaxSteps      int
}

// New creates the sales assistant. Backends default to the stubs.
func New(optFns ...func(o *Options)) (*agent.ModelAgent, error) {
	opts := Options{MaxSteps: agent.DefaultMaxSteps}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Customers == nil {
		opts.Customers = StubDirectory{}
	}
	if opts.Opportunities == nil {
		opts.Opportunities = NewMemoryOpportunityStore()
	}

	return agent.NewModelAgent(ID, func(o *agent.ModelAgentOptions) {
		o.Description = Description
		o.Instruction = agent.JoinInstructions(
			agent.NewInstructionFromText(Instructions),
			agent.NewInstructionFromText(customerContext),
		)
		o.Tools = []tool.Tool{NewFindCustomerTool(opts.Customers), NewCreateOpportunityTool(opts.Opportunities)}
		o.MaxSteps = opts.MaxSteps
	})
}
