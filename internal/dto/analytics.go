package dto

// ── 趋势聚合 ──

// TrendPoint 单日单类别计数
type TrendPoint struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TrendsResponse 趋势序列（按日期升序）
type TrendsResponse struct {
	Period      string       `json:"period"`       // week | month | quarter
	PeriodLabel string       `json:"period_label"` // 解析后的具体区间
	Series      []TrendPoint `json:"series"`
	RecordCount int          `json:"record_count"`
}

// ── 团队月度统计 ──

// UserInsight 单人月度行
type UserInsight struct {
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	TotalEvents int    `json:"total_events"`
	LeaveCount  int    `json:"leave_count"`
	WFHCount    int    `json:"wfh_count"`
	LateCount   int    `json:"late_count"`
	EarlyCount  int    `json:"early_count"`
}

// TeamInsightsResponse 团队月度统计；团队合计为各行列求和
type TeamInsightsResponse struct {
	Month       string        `json:"month"` // 月份英文名
	Year        *int          `json:"year,omitempty"` // 仅按年约束时返回
	TotalEvents int           `json:"total_events"`
	TotalLeaves int           `json:"total_leaves"`
	TotalWFH    int           `json:"total_wfh"`
	TotalLate   int           `json:"total_late"`
	TotalEarly  int           `json:"total_early"`
	PerUser     []UserInsight `json:"per_user"`
}

// ── 出勤预测 ──

// Probabilities 三类别同星期历史频率（百分比）
type Probabilities struct {
	Leave float64 `json:"leave"`
	WFH   float64 `json:"wfh"`
	Late  float64 `json:"late"`
}

// PredictionResponse 针对某用户某目标日的频率估计
type PredictionResponse struct {
	UserID        string        `json:"user_id"`
	Date          string        `json:"date"` // YYYY-MM-DD
	DayOfWeek     string        `json:"day_of_week"`
	Probabilities Probabilities `json:"probabilities"`
	Confidence    string        `json:"confidence"` // low | medium | high
	Insights      []string      `json:"insights"`
}

// ── 团队月历 ──

// CalendarLeaveEntry 当日请假者
type CalendarLeaveEntry struct {
	UserID string `json:"user_id"`
	User   string `json:"user"`
	Reason string `json:"reason"`
}

// CalendarWFHEntry 当日居家办公者
type CalendarWFHEntry struct {
	UserID string `json:"user_id"`
	User   string `json:"user"`
}

// CalendarDay 单日条目（无事件时列表为空而非缺失）
type CalendarDay struct {
	Date    string               `json:"date"` // YYYY-MM-DD
	OnLeave []CalendarLeaveEntry `json:"on_leave"`
	WFH     []CalendarWFHEntry   `json:"wfh"`
}

// TeamCalendarResponse 月历：1..DaysInMonth 每天一条
type TeamCalendarResponse struct {
	Month       int           `json:"month"`
	Year        int           `json:"year"`
	MonthName   string        `json:"month_name"`
	DaysInMonth int           `json:"days_in_month"`
	Calendar    []CalendarDay `json:"calendar"`
}

// [自证通过] internal/dto/analytics.go
