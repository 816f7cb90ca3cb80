package dto

import "github.com/shopspring/decimal"

// SubordinateMetrics is one row of a manager's or supervisor's subordinate
// list. Score and TaskProgress are computed from evaluation and task history,
// not sampled — see service.DashboardService.
type SubordinateMetrics struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Role               string          `json:"role"`
	Location           string          `json:"location"`
	Status             string          `json:"status"` // "active" | "inactive"
	Score              decimal.Decimal `json:"score"`
	ActivityPercentage decimal.Decimal `json:"activity_percentage"`
	TaskProgress       decimal.Decimal `json:"task_progress"`
	IsTopPerformer     bool            `json:"is_top_performer"`
}

type LocationOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ManagerInfo struct {
	Name string `json:"name"`
	Role string `json:"role"` // "Store Manager" | "Regional Manager"
	Type string `json:"type"` // "SM" | "RM"
}

// StoreMetricsInfo carries external per-store figures, shown when the manager
// view is scoped to a single location.
type StoreMetricsInfo struct {
	Sales         int64 `json:"sales"`
	CustomerCount int64 `json:"customer_count"`
}

type ManagerDashboardResponse struct {
	Manager             ManagerInfo          `json:"manager"`
	LocationName        string               `json:"location_name"`
	Locations           []LocationOption     `json:"locations"`
	LocationAvgProgress decimal.Decimal      `json:"location_avg_progress"`
	StoreMetrics        *StoreMetricsInfo    `json:"store_metrics,omitempty"`
	Supervisors         []SubordinateMetrics `json:"supervisors"`
}

type SupervisorInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Location string `json:"location"`
}

type SupervisorDashboardResponse struct {
	Supervisor          SupervisorInfo       `json:"supervisor"`
	LocationName        string               `json:"location_name"`
	LocationAvgProgress decimal.Decimal      `json:"location_avg_progress"`
	Crews               []SubordinateMetrics `json:"crews"`
}

type AttendanceInfo struct {
	TimeIn  string `json:"time_in"`
	TimeOut string `json:"time_out"`
	Status  string `json:"status"`
}

// SupervisorStatsResponse is the supervisor's own performance card.
type SupervisorStatsResponse struct {
	MyAvgPoint    decimal.Decimal `json:"my_avg_point"`
	TasksApproved int64           `json:"tasks_approved"`
	TasksTotal    int64           `json:"tasks_total"`
	CompletionPct decimal.Decimal `json:"completion_pct"`
	CrewCount     int             `json:"crew_count"`
	CrewAvgPoint  decimal.Decimal `json:"crew_avg_point"`
	Attendance    *AttendanceInfo `json:"attendance"`
}
