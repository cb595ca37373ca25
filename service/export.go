package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hisaab/models"
	"hisaab/store"

	"github.com/xuri/excelize/v2"
)

// 导出格式
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	exportTimeLayout = "2006-01-02 15:04:05"
	exportSheetName  = "Transactions"
)

var exportHeaders = []string{
	"ID", "Date", "Type", "Category", "Description", "Amount",
	"Status", "Contact Person", "Due Date", "Settled", "Tags",
}

// ExportFile 导出结果
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService 记录导出
type ExportService struct {
	txns store.TransactionStore
	now  func() time.Time
}

// NewExportService 创建导出服务
func NewExportService(txns store.TransactionStore) *ExportService {
	return &ExportService{txns: txns, now: time.Now}
}

// Export 按列表筛选条件导出全部匹配记录，format 为空时导出 CSV
func (s *ExportService) Export(ctx context.Context, userID, format string, q ListQuery) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, NewValidationError("format", MsgInvalidFormat)
	}

	filter, err := ParseFilter(q, false)
	if err != nil {
		return nil, err
	}
	txns, _, err := s.txns.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}

	stamp := s.now().Format("20060102_150405")
	if format == FormatXLSX {
		data, err := buildXLSX(txns)
		if err != nil {
			return nil, fmt.Errorf("生成 Excel 失败: %w", err)
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("transactions_%s.xlsx", stamp),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	}

	data, err := buildCSV(txns)
	if err != nil {
		return nil, fmt.Errorf("生成 CSV 失败: %w", err)
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("transactions_%s.csv", stamp),
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
	}, nil
}

func exportRow(t models.Transaction) []string {
	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Format(exportTimeLayout)
	}
	return []string{
		t.ID,
		t.Date.Format(exportTimeLayout),
		t.Type,
		t.Category,
		t.Description,
		strconv.FormatFloat(t.Amount, 'f', 2, 64),
		t.Status,
		t.ContactPerson,
		due,
		strconv.FormatBool(t.IsSettled),
		strings.Join(t.Tags, ";"),
	}
}

func buildCSV(txns []models.Transaction) ([]byte, error) {
	buf := new(bytes.Buffer)
	// 添加 BOM 以便 Excel 正确识别 UTF-8
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	if err := writer.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, t := range txns {
		if err := writer.Write(exportRow(t)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
}

func buildXLSX(txns []models.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorders(),
	})
	if err != nil {
		return nil, err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorders(),
	})
	if err != nil {
		return nil, err
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorders(),
	})
	if err != nil {
		return nil, err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	widths := map[string]float64{"A": 38, "B": 20, "C": 10, "D": 18, "E": 36, "F": 12, "G": 12, "H": 18, "I": 20, "J": 10, "K": 20}
	for col, w := range widths {
		if err := f.SetColWidth(exportSheetName, col, col, w); err != nil {
			return nil, err
		}
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheetName, cell, header)
		f.SetCellStyle(exportSheetName, cell, cell, headerStyle)
	}

	totals := make(map[string]float64)
	for i, t := range txns {
		row := i + 2
		for col, value := range exportRow(t) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if col == 5 {
				f.SetCellValue(exportSheetName, cell, t.Amount)
				continue
			}
			f.SetCellValue(exportSheetName, cell, value)
		}
		f.SetCellStyle(exportSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), dataStyle)
		totals[t.Type] += t.Amount
	}

	// 汇总行：按类型各一行
	row := len(txns) + 2
	for _, typ := range []string{
		models.TransactionTypeIncome,
		models.TransactionTypeExpense,
		models.TransactionTypeBorrow,
		models.TransactionTypeLend,
	} {
		f.SetCellValue(exportSheetName, fmt.Sprintf("A%d", row), "Total "+typ)
		f.MergeCell(exportSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row))
		f.SetCellValue(exportSheetName, fmt.Sprintf("F%d", row), totals[typ])
		f.SetCellStyle(exportSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), summaryStyle)
		row++
	}
	f.SetCellValue(exportSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%d records", len(txns)))
	f.MergeCell(exportSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row))
	f.SetCellStyle(exportSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), summaryStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
