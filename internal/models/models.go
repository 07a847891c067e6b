// Package models содержит доменные структуры: пользователей, пакеты,
// журнал покупок, программы клиентов и вспомогательные типы для приёма
// данных из внешних источников (JSON-запросы).
package models

import (
	"encoding/json"
	"time"
)

// Роли пользователей.
const (
	RoleClient  = "client"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

// Статусы покупки. Переходы статусов выполняют внешние процессы
// (подтверждение оплаты, сметание просроченных); движок их только читает.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusActive    = "active"
	PurchaseStatusExpired   = "expired"
	PurchaseStatusCancelled = "cancelled"
	PurchaseStatusRefunded  = "refunded"
)

// Статусы оплаты покупки.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Виды программ клиента.
const (
	ProgramKindWorkout    = "workout"
	ProgramKindNutrition  = "nutrition"
	ProgramKindSupplement = "supplement"
)

// User представляет пользователя портала: клиента, тренера или администратора.
type User struct {
	UID          string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	TrainerUID   *string // для клиента — uid его тренера, nil если не привязан
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Package описывает пакет услуг из каталога. После первой покупки запись
// считается неизменяемой: цена и срок снимаются снапшотом в момент покупки.
type Package struct {
	ID           int      `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Price        int      `json:"price"` // в минорных единицах валюты
	Currency     string   `json:"currency"`
	DurationDays int      `json:"duration_days"`
	Features     []string `json:"features"`
	IsActive     bool     `json:"is_active"`
}

// PackageSnapshot денормализованный снимок пакета на момент покупки.
type PackageSnapshot struct {
	Name         string   `json:"name"`
	Price        int      `json:"price"`
	Currency     string   `json:"currency"`
	DurationDays int      `json:"duration_days"`
	Features     []string `json:"features"`
}

// Purchase запись журнала покупок пользователя.
type Purchase struct {
	ID            int
	UserUID       string
	PackageID     int
	Status        string
	PaymentStatus string
	Amount        int // в минорных единицах валюты
	Currency      string
	StartsAt      time.Time
	ExpiresAt     time.Time
	PurchasedAt   time.Time
	Snapshot      PackageSnapshot
}

// Entitlement резолюция текущего активного пакета пользователя.
// RemainingDays считается от единого now на весь запрос.
type Entitlement struct {
	PurchaseID    int             `json:"purchase_id"`
	Status        string          `json:"status"`
	StartsAt      time.Time       `json:"starts_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
	RemainingDays int             `json:"remaining_days"`
	Package       PackageSnapshot `json:"package"`
}

// Program строка программы клиента (тренировки, питание или добавки).
// Строк с is_active=true у пары (клиент, вид) исторически может быть
// несколько; актуальной считается самая свежая по created_at.
type Program struct {
	ID         int
	ClientUID  string
	TrainerUID string
	Kind       string
	Title      string
	IsActive   bool
	Payload    json.RawMessage // полуструктурированное содержимое, может ссылаться на template_id
	CreatedAt  time.Time
}

// ProgramSummary ответ резолвера текущей программы для показа клиенту/тренеру.
type ProgramSummary struct {
	ProgramID  int               `json:"program_id"`
	Kind       string            `json:"kind"`
	Title      string            `json:"title"`
	TemplateID string            `json:"template_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	Entries    []SupplementEntry `json:"entries,omitempty"` // только для программ добавок
}

// SupplementEntry одна валидная позиция программы добавок.
type SupplementEntry struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	Dosage     string `json:"dosage,omitempty"`
	Timing     string `json:"timing,omitempty"`
}

// Ticket запрос клиента в поддержку; движок использует только счётчики.
type Ticket struct {
	ID         int
	ClientUID  string
	TrainerUID string
	Subject    string
	Status     string // open, in_progress, closed
	Priority   string // normal, high, urgent
	CreatedAt  time.Time
}

// Session тренировочная сессия тренера с клиентом.
type Session struct {
	ID          int
	TrainerUID  string
	ClientUID   string
	Title       string
	ScheduledAt time.Time
	Status      string // scheduled, completed, cancelled
}

// ExpiringPurchaseInfo данные для письма-напоминания о скором окончании пакета.
type ExpiringPurchaseInfo struct {
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	PackageName string    `json:"package_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}
