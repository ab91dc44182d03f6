package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ratishjain12/slack-leaves-bot/internal/model"
)

func newCalendarService(repo *mockAttendanceRepo) CalendarService {
	return NewCalendarService(newRepoAggregate(repo), zap.NewNop())
}

func TestTeamCalendar_LeapFebruary(t *testing.T) {
	repo := newMockAttendanceRepo()
	svc := newCalendarService(repo)

	resp, err := svc.TeamCalendar(context.Background(), time.February, 2024)
	if err != nil {
		t.Fatalf("月历构建不应失败: %v", err)
	}

	if resp.DaysInMonth != 29 {
		t.Errorf("2024 年 2 月应有 29 天: got %d", resp.DaysInMonth)
	}
	if len(resp.Calendar) != 29 {
		t.Fatalf("月历条目数错误: got %d", len(resp.Calendar))
	}
	if resp.Calendar[0].Date != "2024-02-01" || resp.Calendar[28].Date != "2024-02-29" {
		t.Errorf("月历首尾日期错误: %s .. %s", resp.Calendar[0].Date, resp.Calendar[28].Date)
	}
	// 无事件的日子给空列表而非 null
	for _, day := range resp.Calendar {
		if day.OnLeave == nil || day.WFH == nil {
			t.Fatalf("%s 的名单应为空列表而非 nil", day.Date)
		}
	}
}

func TestTeamCalendar_Entries(t *testing.T) {
	repo := newMockAttendanceRepo()
	seedEvent(repo, "u1", mustParseTime(t, "2024-03-05T09:00:00Z"), func(ev *model.AttendanceEvent) {
		ev.IsOnLeave = true
		ev.Reason = "wedding"
	})
	// 无事由请假 → 占位文案
	seedEvent(repo, "u2", mustParseTime(t, "2024-03-05T10:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsOnLeave = true })
	seedEvent(repo, "u3", mustParseTime(t, "2024-03-06T09:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsWorkingFromHome = true })
	// 迟到不进月历
	seedEvent(repo, "u4", mustParseTime(t, "2024-03-06T09:45:00Z"), func(ev *model.AttendanceEvent) { ev.IsRunningLate = true })
	// leave_day 指向别的日子时按生效日落位
	leaveDay := mustParseTime(t, "2024-03-20T00:00:00Z")
	seedEvent(repo, "u5", mustParseTime(t, "2024-03-01T09:00:00Z"), func(ev *model.AttendanceEvent) {
		ev.IsOnLeave = true
		ev.LeaveDay = &leaveDay
		ev.Reason = "travel"
	})

	svc := newCalendarService(repo)
	resp, err := svc.TeamCalendar(context.Background(), time.March, 2024)
	if err != nil {
		t.Fatalf("月历构建不应失败: %v", err)
	}

	day5 := resp.Calendar[4]
	if len(day5.OnLeave) != 2 {
		t.Fatalf("03-05 请假名单错误: %+v", day5.OnLeave)
	}
	reasons := map[string]string{}
	for _, entry := range day5.OnLeave {
		reasons[entry.UserID] = entry.Reason
	}
	if reasons["u1"] != "wedding" {
		t.Errorf("事由丢失: %+v", day5.OnLeave)
	}
	if reasons["u2"] != "Not specified" {
		t.Errorf("缺事由应给占位文案: %+v", day5.OnLeave)
	}

	day6 := resp.Calendar[5]
	if len(day6.WFH) != 1 || day6.WFH[0].UserID != "u3" {
		t.Errorf("03-06 居家名单错误: %+v", day6.WFH)
	}
	if len(day6.OnLeave) != 0 {
		t.Errorf("迟到不应进请假名单: %+v", day6.OnLeave)
	}

	day20 := resp.Calendar[19]
	if len(day20.OnLeave) != 1 || day20.OnLeave[0].UserID != "u5" {
		t.Errorf("leave_day 落位错误: %+v", day20.OnLeave)
	}
	// 上报日 03-01 不应出现该记录
	if len(resp.Calendar[0].OnLeave) != 0 {
		t.Errorf("提前请假不应落在上报日: %+v", resp.Calendar[0].OnLeave)
	}
}

func TestTeamCalendar_YearScoped(t *testing.T) {
	repo := newMockAttendanceRepo()
	seedEvent(repo, "u1", mustParseTime(t, "2023-03-10T09:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsOnLeave = true })

	svc := newCalendarService(repo)
	resp, err := svc.TeamCalendar(context.Background(), time.March, 2024)
	if err != nil {
		t.Fatalf("月历构建不应失败: %v", err)
	}
	// 月历从不跨年合并
	if len(resp.Calendar[9].OnLeave) != 0 {
		t.Errorf("去年记录不应进今年月历: %+v", resp.Calendar[9].OnLeave)
	}
}

func TestBuildICS(t *testing.T) {
	repo := newMockAttendanceRepo()
	seedEvent(repo, "u1", mustParseTime(t, "2024-03-05T09:00:00Z"), func(ev *model.AttendanceEvent) {
		ev.IsOnLeave = true
		ev.Reason = "wedding"
	})
	seedEvent(repo, "u2", mustParseTime(t, "2024-03-06T09:00:00Z"), func(ev *model.AttendanceEvent) { ev.IsWorkingFromHome = true })

	svc := newCalendarService(repo)
	out, err := svc.BuildICS(context.Background(), time.March, 2024)
	if err != nil {
		t.Fatalf("ICS 生成不应失败: %v", err)
	}

	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Fatal("ICS 输出缺少日历包裹")
	}
	if !strings.Contains(out, "leave-u1-2024-03-05@slack-leaves-bot") {
		t.Error("ICS 缺少请假事件 UID")
	}
	if !strings.Contains(out, "wfh-u2-2024-03-06@slack-leaves-bot") {
		t.Error("ICS 缺少居家事件 UID")
	}
	if strings.Count(out, "BEGIN:VEVENT") != 2 {
		t.Errorf("ICS 事件数错误: got %d", strings.Count(out, "BEGIN:VEVENT"))
	}
}

// [自证通过] internal/service/calendar_service_test.go
