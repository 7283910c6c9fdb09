// Package model содержит доменные сущности сервиса учёта абонементов спортзала.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientStatus описывает состояние клиента.
type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "active"
	ClientStatusInactive  ClientStatus = "inactive"
	ClientStatusSuspended ClientStatus = "suspended"
)

// Valid сообщает, что статус входит в допустимый набор.
func (s ClientStatus) Valid() bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusSuspended:
		return true
	}
	return false
}

// Client представляет клиента спортзала.
type Client struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Status    ClientStatus
	CreatedAt time.Time
}

// MembershipPlan описывает тарифный план: цену одного периода и его длину в днях.
type MembershipPlan struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	PeriodDays int
	CreatedAt  time.Time
}

// MembershipStatus описывает состояние абонемента.
type MembershipStatus string

const (
	MembershipStatusActive         MembershipStatus = "active"
	MembershipStatusExpired        MembershipStatus = "expired"
	MembershipStatusUpcomingExpiry MembershipStatus = "upcoming_expiry"
)

// Membership связывает клиента с тарифным планом на интервал дат.
// ClientID указывает владельца, Members содержит остальных участников общего абонемента.
type Membership struct {
	ID        int64
	ClientID  int64
	Members   []int64
	PlanID    int64
	StartDate time.Time
	EndDate   time.Time
	Status    MembershipStatus
	CreatedAt time.Time
}

// HasClient сообщает, пользуется ли клиент абонементом как владелец или участник.
func (m Membership) HasClient(clientID int64) bool {
	if m.ClientID == clientID {
		return true
	}
	for _, id := range m.Members {
		if id == clientID {
			return true
		}
	}
	return false
}

// PaymentStatus описывает состояние платежа. В расчёт задолженности идут только completed.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
)

// PaymentMethod описывает способ оплаты.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodMixed    PaymentMethod = "mixed"
)

// Valid сообщает, что способ оплаты известен.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodMixed:
		return true
	}
	return false
}

// SplitPayment раскладывает смешанный платёж на наличные и перевод.
type SplitPayment struct {
	Cash     decimal.Decimal `json:"cash"`
	Transfer decimal.Decimal `json:"transfer"`
}

// Payment описывает платёж клиента. PaymentMonth содержит ключ периода (YYYY-MM), в счёт которого зачтён платёж.
type Payment struct {
	ID           int64
	ClientID     int64
	MembershipID *int64
	AllocationID uuid.UUID
	Amount       decimal.Decimal
	Method       PaymentMethod
	PaymentDate  time.Time
	Status       PaymentStatus
	PaymentMonth string
	IsPartial    bool
	Split        *SplitPayment
	Notes        string
	CreatedAt    time.Time
}

// AuditLog описывает запись журнала действий.
type AuditLog struct {
	ID          int64
	ActionType  string
	EntityType  string
	EntityID    int64
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}
