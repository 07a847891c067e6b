package models

import "time"

// DashboardSnapshot агрегированный снимок дашборда тренера.
// Поля и единицы (минорные единицы валюты, ISO-8601 даты) фиксированы —
// их потребляет слой графиков как есть.
type DashboardSnapshot struct {
	Metrics          DashboardMetrics `json:"metrics"`
	Workload         WorkloadSummary  `json:"workload"`
	RevenueTrend     []TrendPoint     `json:"revenue_trend"`
	ClientTrend      []TrendPoint     `json:"client_trend"`
	RecentClients    []ClientBrief    `json:"recent_clients"`
	RecentOrders     []OrderBrief     `json:"recent_orders"`
	UpcomingSessions []SessionBrief   `json:"upcoming_sessions"`
	Diagnostics      []string         `json:"diagnostics,omitempty"`
}

// DashboardMetrics сводные показатели тренера.
// RevenueChangePercent равен nil, когда выручка предыдущего месяца
// нулевая или отсутствует — деление на ноль наружу не выходит.
type DashboardMetrics struct {
	TotalClients         int      `json:"total_clients"`
	ActiveClients        int      `json:"active_clients"`
	MonthlyRevenue       int64    `json:"monthly_revenue"`
	RevenueChangePercent *float64 `json:"revenue_change_percent"`
}

// WorkloadSummary счётчики текущей нагрузки тренера.
type WorkloadSummary struct {
	ActiveWorkoutPrograms    int `json:"active_workout_programs"`
	ActiveNutritionPrograms  int `json:"active_nutrition_programs"`
	ActiveSupplementPrograms int `json:"active_supplement_programs"`
	OpenTickets              int `json:"open_tickets"`
	UrgentTickets            int `json:"urgent_tickets"`
}

// TrendPoint одна точка помесячного тренда. Month в формате "2006-01".
type TrendPoint struct {
	Month string `json:"month"`
	Value int64  `json:"value"`
}

// ClientBrief краткая карточка клиента для списков дашборда.
type ClientBrief struct {
	UID      string    `json:"uid"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

// OrderBrief краткая карточка покупки для списков дашборда.
type OrderBrief struct {
	PurchaseID  int       `json:"purchase_id"`
	ClientUID   string    `json:"client_uid"`
	PackageName string    `json:"package_name"`
	Amount      int       `json:"amount"`
	Currency    string    `json:"currency"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// SessionBrief краткая карточка предстоящей сессии.
type SessionBrief struct {
	SessionID   int       `json:"session_id"`
	ClientUID   string    `json:"client_uid"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
}
