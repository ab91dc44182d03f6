package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/ratishjain12/slack-leaves-bot/internal/classifier"
	"github.com/ratishjain12/slack-leaves-bot/internal/model"
	"github.com/ratishjain12/slack-leaves-bot/internal/repository"
	apperrors "github.com/ratishjain12/slack-leaves-bot/pkg/errors"
)

// ── Mock AttendanceRepository ──
//
// 内存版实现，与 GORM 实现保持同一套 upsert 决策语义

type mockAttendanceRepo struct {
	events []*model.AttendanceEvent
	seq    int
	// failNext 注入一次存储故障
	failNext error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) takeFailure(op string) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return apperrors.NewStorage(op, err)
	}
	return nil
}

func (m *mockAttendanceRepo) UpsertSameDay(_ context.Context, candidate *model.AttendanceEvent) (*repository.UpsertResult, error) {
	if err := m.takeFailure("upsert_same_day"); err != nil {
		return nil, err
	}

	day := candidate.EffectiveDate()
	candidate.EventDay = day

	for _, ev := range m.events {
		if ev.UserID == candidate.UserID && ev.EventDay.Equal(day) {
			if ev.SameFlags(candidate) {
				return &repository.UpsertResult{Outcome: repository.OutcomeUnchanged, Event: ev}, nil
			}
			old := *ev
			ev.Overwrite(candidate)
			return &repository.UpsertResult{Outcome: repository.OutcomeUpdated, Old: &old, Event: ev}, nil
		}
	}

	m.seq++
	candidate.EventID = fmt.Sprintf("ev-%d", m.seq)
	stored := *candidate
	m.events = append(m.events, &stored)
	return &repository.UpsertResult{Outcome: repository.OutcomeCreated, Event: &stored}, nil
}

func (m *mockAttendanceRepo) ApplyEdit(_ context.Context, candidate *model.AttendanceEvent) (*repository.UpsertResult, error) {
	if err := m.takeFailure("apply_edit"); err != nil {
		return nil, err
	}

	var latest *model.AttendanceEvent
	for _, ev := range m.events {
		if ev.UserID != candidate.UserID {
			continue
		}
		if latest == nil || ev.Timestamp.After(latest.Timestamp) {
			latest = ev
		}
	}

	if latest == nil {
		candidate.EventDay = candidate.EffectiveDate()
		m.seq++
		candidate.EventID = fmt.Sprintf("ev-%d", m.seq)
		stored := *candidate
		m.events = append(m.events, &stored)
		return &repository.UpsertResult{Outcome: repository.OutcomeCreated, Event: &stored}, nil
	}

	if latest.SameFlags(candidate) {
		return &repository.UpsertResult{Outcome: repository.OutcomeUnchanged, Event: latest}, nil
	}

	origTS := latest.Timestamp
	old := *latest
	latest.Overwrite(candidate)
	latest.Timestamp = origTS
	if latest.LeaveDay != nil {
		latest.EventDay = model.Truncate(*latest.LeaveDay)
	} else {
		latest.EventDay = model.Truncate(origTS)
	}
	return &repository.UpsertResult{Outcome: repository.OutcomeUpdated, Old: &old, Event: latest}, nil
}

func (m *mockAttendanceRepo) ListByTimestampRange(_ context.Context, from, to time.Time) ([]model.AttendanceEvent, error) {
	if err := m.takeFailure("list_by_timestamp_range"); err != nil {
		return nil, err
	}

	var result []model.AttendanceEvent
	for _, ev := range m.events {
		if !ev.Timestamp.Before(from) && !ev.Timestamp.After(to) {
			result = append(result, *ev)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result, nil
}

func (m *mockAttendanceRepo) ListByMonth(_ context.Context, month time.Month, year *int) ([]model.AttendanceEvent, error) {
	if err := m.takeFailure("list_by_month"); err != nil {
		return nil, err
	}

	var result []model.AttendanceEvent
	for _, ev := range m.events {
		if ev.EventDay.Month() != month {
			continue
		}
		if year != nil && ev.EventDay.Year() != *year {
			continue
		}
		result = append(result, *ev)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EventDay.Before(result[j].EventDay) })
	return result, nil
}

func (m *mockAttendanceRepo) ListByUser(_ context.Context, userID string) ([]model.AttendanceEvent, error) {
	if err := m.takeFailure("list_by_user"); err != nil {
		return nil, err
	}

	var result []model.AttendanceEvent
	for _, ev := range m.events {
		if ev.UserID == userID {
			result = append(result, *ev)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result, nil
}

// ── Mock Classifier ──

type mockClassifier struct {
	candidate *classifier.RawCandidate
	err       error
}

func (m *mockClassifier) Classify(_ context.Context, _ classifier.UserContext, _ string, _ time.Time) (*classifier.RawCandidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	// 返回副本，避免测试间共享可变状态
	c := *m.candidate
	return &c, nil
}

// ── Mock Deliverer ──

type mockDeliverer struct {
	delivered []string // destination:filename
	err       error
}

func (m *mockDeliverer) Deliver(_ context.Context, destination, filename string, _ *bytes.Buffer) error {
	if m.err != nil {
		return m.err
	}
	m.delivered = append(m.delivered, destination+":"+filename)
	return nil
}

// ── 公共测试数据 ──

// seedEvent 构造一条已入库记录
func seedEvent(repo *mockAttendanceRepo, userID string, ts time.Time, mutate func(*model.AttendanceEvent)) *model.AttendanceEvent {
	ev := &model.AttendanceEvent{
		UserID:    userID,
		UserName:  userID,
		Timestamp: ts,
	}
	if mutate != nil {
		mutate(ev)
	}
	ev.EventDay = ev.EffectiveDate()
	repo.seq++
	ev.EventID = fmt.Sprintf("ev-%d", repo.seq)
	repo.events = append(repo.events, ev)
	return ev
}

func newRepoAggregate(attendance *mockAttendanceRepo) *repository.Repository {
	return &repository.Repository{Attendance: attendance}
}

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("测试数据时间解析失败: %v", err)
	}
	return ts
}

// [自证通过] internal/service/mock_repos_test.go
