package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// Format 导出格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// SheetName Excel 导出的工作表名
const SheetName = "Log Data"

var ErrUnsupportedFormat = errors.New("不支持的导出格式")

// ParseFormat 解析导出格式，兼容 excel/xls 写法
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel", "xls":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType HTTP 响应类型
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Extension 文件扩展名
func (f Format) Extension() string { return string(f) }

// Table 通用二维表：标题、列头与单元格
// 单元格可为 string / int / float64 / nil（nil 渲染为空）
type Table struct {
	Title   string
	Columns []string
	Rows    [][]any
}

// AddRow 追加一行
func (t *Table) AddRow(cells ...any) { t.Rows = append(t.Rows, cells) }

// Write 按格式写出表格
func Write(w io.Writer, format Format, t *Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatPDF:
		return WritePDF(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ──────── CSV ────────

// WriteCSV 首行为列头，不含标题
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = FormatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ──────── Excel ────────

// WriteXLSX 单工作表：第 1 行标题（合并单元格），第 2 行列头，之后为数据
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	ncols := len(t.Columns)
	if ncols == 0 {
		ncols = 1
	}
	lastCol := colName(ncols - 1)

	_ = f.SetCellValue(SheetName, "A1", t.Title)
	_ = f.MergeCell(SheetName, "A1", lastCol+"1")
	_ = f.SetCellStyle(SheetName, "A1", lastCol+"1", titleStyle)

	for i, c := range t.Columns {
		_ = f.SetCellValue(SheetName, cell(colName(i), 2), c)
		_ = f.SetColWidth(SheetName, colName(i), colName(i), columnWidth(c))
	}
	if len(t.Columns) > 0 {
		_ = f.SetCellStyle(SheetName, "A2", lastCol+"2", headerStyle)
	}

	for r, row := range t.Rows {
		for i, raw := range row {
			v := cellValue(raw)
			if v == nil {
				continue
			}
			if err := f.SetCellValue(SheetName, cell(colName(i), r+3), v); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// cellValue 解引用可空数值，空值不写单元格
func cellValue(v any) any {
	if p, ok := v.(*float64); ok {
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func columnWidth(header string) float64 {
	w := float64(len(header)) + 4
	if w < 12 {
		w = 12
	}
	return w
}

// ──────── PDF ────────

// WritePDF 横向 A4，列宽均分；内置字体只覆盖 cp1252，其余字符经转换表映射
func WritePDF(w io.Writer, t *Table) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(usable, 10, tr(t.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	ncols := len(t.Columns)
	if ncols == 0 {
		return pdfError(pdf, w)
	}
	colW := usable / float64(ncols)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		for _, c := range t.Columns {
			pdf.CellFormat(colW, 7, tr(c), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 8)
	}
	header()

	_, pageH := pdf.GetPageSize()
	for _, row := range t.Rows {
		if pdf.GetY()+6 > pageH-10 {
			pdf.AddPage()
			header()
		}
		for i := 0; i < ncols; i++ {
			var v any
			if i < len(row) {
				v = row[i]
			}
			align := "L"
			switch v.(type) {
			case int, int64, float64:
				align = "R"
			}
			pdf.CellFormat(colW, 6, tr(FormatCell(v)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdfError(pdf, w)
}

func pdfError(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// FormatCell 单元格文本：浮点保留两位小数，nil 为空串
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', 2, 64)
	default:
		return fmt.Sprint(x)
	}
}
