package funding

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/internal/docx"
	"github.com/hupe1980/agentdesk/internal/util"
	"github.com/hupe1980/agentdesk/tool"
)

// Funding request types.
const (
	TypeEquipmentPurchase = "xin mua sắm thiết bị"
	TypeOther             = "loại khác"
)

// DefaultCurrency is used when the request names none.
const DefaultCurrency = "VND"

// Result messages.
const (
	msgCreated     = "Tờ trình đã được tạo thành công."
	msgUnsupported = "Loại tờ trình này chưa được hỗ trợ."
)

// DocxStateKey holds the path of the last generated document in the
// conversation data map.
const DocxStateKey = "docx"

// Request is the argument record of tao_to_trinh_kinh_phi.
type Request struct {
	Title       string  `json:"tieu_de" description:"Tiêu đề của tờ trình. Có thể tự tạo dựa trên loại kinh phí."`
	Type        string  `json:"loai_kinh_phi" description:"Loại kinh phí: xin mua sắm thiết bị hoặc loại khác. Bắt buộc phải do người dùng cung cấp." enum:"xin mua sắm thiết bị|loại khác"`
	IssueDate   string  `json:"ngay_lap,omitempty" description:"Ngày lập tờ trình (YYYY-MM-DD). Có thể tự động tạo là ngày hôm nay." format:"date"`
	Proposer    string  `json:"nguoi_de_xuat" description:"Người đề xuất (Họ và tên)."`
	Unit        string  `json:"don_vi" description:"Đơn vị công tác."`
	Content     string  `json:"noi_dung" description:"Nội dung chi tiết của đề xuất. Người dùng bắt buộc cần cung cấp lý do đề xuất. Sau đó phần nội dung có thể tự được sinh ra với độ dài khoảng 5 câu."`
	Total       float64 `json:"tong_kinh_phi" description:"Tổng kinh phí đề xuất (số). Bắt buộc phải do người dùng cung cấp." minimum:"0"`
	Currency    string  `json:"don_vi_tien_te,omitempty" description:"Đơn vị tiền tệ (mặc định là VND)."`
	OtherAsks   string  `json:"de_xuat_khac,omitempty" description:"Các đề xuất khác (nếu có)."`
}

// ToolOptions configure the document tool.
type ToolOptions struct {
	TemplatePath string
	OutputDir    string
	Now          func() time.Time
	NewID        func() string
}

type documentTool struct {
	opts ToolOptions
}

// NewDocumentTool returns tao_to_trinh_kinh_phi.
func NewDocumentTool(optFns ...func(o *ToolOptions)) tool.Tool {
	opts := ToolOptions{
		OutputDir: "output",
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	d := &documentTool{opts: opts}

	return tool.NewTypedTool(
		"tao_to_trinh_kinh_phi",
		"Tạo một tờ trình xin kinh phí với các chi tiết được cung cấp.",
		d.create,
	)
}

func (d *documentTool) create(tc *core.ToolContext, req Request) tool.Result {
	if req.Type != TypeEquipmentPurchase {
		return tool.Failure(msgUnsupported)
	}

	if req.IssueDate == "" {
		req.IssueDate = d.opts.Now().Format(util.DateLayout)
	}
	if req.Currency == "" {
		req.Currency = DefaultCurrency
	}

	issued, err := time.Parse(util.DateLayout, req.IssueDate)
	if err != nil {
		return tool.Failuref("Ngày lập không hợp lệ: %s", req.IssueDate)
	}

	total := FormatAmount(int64(req.Total))

	data := map[string]any{
		"tieu_de":        req.Title,
		"loai_kinh_phi":  req.Type,
		"ngay_lap":       req.IssueDate,
		"nguoi_de_xuat":  req.Proposer,
		"don_vi":         req.Unit,
		"noi_dung":       req.Content,
		"tong_kinh_phi":  total,
		"don_vi_tien_te": req.Currency,
		"de_xuat_khac":   nil,
	}
	if req.OtherAsks != "" {
		data["de_xuat_khac"] = req.OtherAsks
	}

	name := d.opts.NewID() + ".docx"
	output := filepath.Join(d.opts.OutputDir, name)

	doc, err := docx.Fill(d.opts.TemplatePath, output, map[string]string{
		"{{TIEU_DE}}":        Upper(req.Title),
		"{{loai_kinh_phi}}":  req.Type,
		"{{ngay}}":           fmt.Sprintf("%02d", issued.Day()),
		"{{thang}}":          fmt.Sprintf("%02d", int(issued.Month())),
		"{{nam}}":            fmt.Sprintf("%d", issued.Year()),
		"{{nguoi_de_xuat}}":  req.Proposer,
		"{{NGUOI_DE_XUAT}}":  Upper(req.Proposer),
		"{{don_vi}}":         req.Unit,
		"{{noi_dung}}":       req.Content,
		"{{tong_kinh_phi}}":  total,
		"{{don_vi_tien_te}}": req.Currency,
		"{{de_xuat_khac}}":   req.OtherAsks,
	})
	if err != nil {
		return tool.FromError(err)
	}

	if err := tc.SaveArtifact(name, doc); err != nil {
		tc.Logger().Warn("funding.artifact.save_failed", "artifact", name, "error", err.Error())
	}

	output = filepath.ToSlash(output)
	if !strings.HasPrefix(output, "/") && !strings.HasPrefix(output, ".") {
		output = "./" + output
	}

	data[DocxStateKey] = output
	tc.SetState(DocxStateKey, output)

	return tool.Success(msgCreated, data)
}
