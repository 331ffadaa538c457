package sales

import (
	"strings"
	"unicode"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/tool"
)

// Opportunity states accepted by tao_co_hoi_ban.
const (
	StateProspecting = "Tiếp cận"
	StateConsulting  = "Tư vấn"
	StateDeclined    = "Từ chối"
	StateWon         = "Thành công"
	StateLost        = "Thất bại"
)

// CustomerStateKey holds the id of the last customer found on the thread.
const CustomerStateKey = "customer_id"

// minPhoneDigits is the shortest phone number accepted for lookup.
const minPhoneDigits = 9

// Result messages.
const (
	msgCustomerFound      = "Đã tìm được thông tin khách hàng."
	msgOpportunityCreated = "Đã tạo thành công cơ hội bán."
	msgInvalidPhone       = "Số điện thoại không hợp lệ."
	msgCustomerNotFound   = "Không tìm thấy khách hàng với số điện thoại này."
)

type findCustomerArgs struct {
	PhoneNumber string `json:"phone_number" description:"Số điện thoại của khách hàng."`
}

// NewFindCustomerTool returns tim_kiem_khach_hang backed by dir.
func NewFindCustomerTool(dir CustomerDirectory) tool.Tool {
	return tool.NewTypedTool(
		"tim_kiem_khach_hang",
		"Tìm kiếm khách hàng dựa trên số điện thoại. Hãy gọi công cụ này khi có thể, nếu sai ở đâu công cụ sẽ báo lại.",
		func(tc *core.ToolContext, args findCustomerArgs) tool.Result {
			phone := NormalizePhone(args.PhoneNumber)
			if len(phone) < minPhoneDigits {
				return tool.Failure(msgInvalidPhone)
			}

			c, err := dir.FindByPhone(tc.Context(), phone)
			if err != nil {
				return tool.FromError(err)
			}
			if c == nil {
				return tool.Failure(msgCustomerNotFound)
			}

			tc.SetState(CustomerStateKey, c.ID)

			return tool.Success(msgCustomerFound, map[string]any{"id": c.ID})
		},
	)
}

// NormalizePhone strips every non-digit, so "0123.358.890" becomes "0123358890".
func NormalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

type createOpportunityArgs struct {
	CustomerID  string `json:"customer_id" description:"ID của khách hàng"`
	ProductName string `json:"product_name" description:"Tên của sản phẩm"`
	State       string `json:"state" description:"Trạng thái cơ hội bán: Tiếp cận / Tư vấn / Từ chối / Thành công / Thất bại" enum:"Tiếp cận|Tư vấn|Từ chối|Thành công|Thất bại"`
	SaleValue   int64  `json:"sale_value" description:"Doanh số (đơn vị VND)" minimum:"0"`
}

// NewCreateOpportunityTool returns tao_co_hoi_ban backed by store.
func NewCreateOpportunityTool(store OpportunityStore) tool.Tool {
	return tool.NewTypedTool(
		"tao_co_hoi_ban",
		"Tạo cơ hội bán. Hãy gọi công cụ này khi có thể, nếu sai ở đâu công cụ sẽ báo lại.",
		func(tc *core.ToolContext, args createOpportunityArgs) tool.Result {
			if strings.TrimSpace(args.CustomerID) == "" {
				return tool.Failure("Thiếu ID khách hàng.")
			}

			o, err := store.Create(tc.Context(), Opportunity{
				CustomerID:  args.CustomerID,
				ProductName: args.ProductName,
				State:       args.State,
				SaleValue:   args.SaleValue,
			})
			if err != nil {
				return tool.FromError(err)
			}

			tc.SetState("last_opportunity_id", o.ID)

			return tool.Success(msgOpportunityCreated, map[string]any{})
		},
	)
}
