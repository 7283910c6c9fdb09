package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/gym-billing/internal/billing"
	"github.com/mmeshcher/gym-billing/internal/model"
)

const dateLayout = time.DateOnly

// money округляет сумму до копеек для ответа.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

type clientRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Phone  string `json:"phone" validate:"max=50"`
	Email  string `json:"email" validate:"omitempty,email"`
	Status string `json:"status" validate:"omitempty,clientstatus"`
}

type clientStatusRequest struct {
	Status string `json:"status" validate:"required,clientstatus"`
}

type clientResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toClientResponse(c model.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

type planRequest struct {
	Name       string          `json:"name" validate:"required,max=200"`
	Price      decimal.Decimal `json:"price"`
	PeriodDays int             `json:"period_days" validate:"required,gt=0"`
}

type planResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	PeriodDays  int     `json:"period_days"`
	PeriodLabel string  `json:"period_label"`
	CreatedAt   string  `json:"created_at"`
}

func toPlanResponse(p model.MembershipPlan) planResponse {
	return planResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       money(p.Price),
		PeriodDays:  p.PeriodDays,
		PeriodLabel: billing.LabelFor(p.PeriodDays).Singular,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

type membershipRequest struct {
	ClientID  int64  `json:"client_id" validate:"required,gt=0"`
	PlanID    int64  `json:"plan_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

type memberRequest struct {
	ClientID int64 `json:"client_id" validate:"required,gt=0"`
}

type renewRequest struct {
	Periods int `json:"periods" validate:"required,gt=0"`
}

type membershipResponse struct {
	ID        int64   `json:"id"`
	ClientID  int64   `json:"client_id"`
	PlanID    int64   `json:"plan_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Status    string  `json:"status"`
	Members   []int64 `json:"members,omitempty"`
}

func toMembershipResponse(m model.Membership) membershipResponse {
	return membershipResponse{
		ID:        m.ID,
		ClientID:  m.ClientID,
		PlanID:    m.PlanID,
		StartDate: m.StartDate.Format(dateLayout),
		EndDate:   m.EndDate.Format(dateLayout),
		Status:    string(m.Status),
		Members:   m.Members,
	}
}

type splitRequest struct {
	Cash     decimal.Decimal `json:"cash"`
	Transfer decimal.Decimal `json:"transfer"`
}

type paymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	ClientID    int64           `json:"client_id" validate:"gte=0"`
	Method      string          `json:"method" validate:"omitempty,paymethod"`
	Split       *splitRequest   `json:"split"`
	PeriodCount int             `json:"period_count" validate:"gte=0"`
	PaymentDate string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Notes       string          `json:"notes" validate:"max=500"`
}

// paymentsQuery описывает фильтры списка платежей клиента.
type paymentsQuery struct {
	Month string `validate:"omitempty,periodkey"`
}

// draft собирает черновик платежа. Разбивка задаёт способ mixed.
func (req paymentRequest) draft() billing.PaymentDraft {
	d := billing.NewPaymentDraft(req.Amount).WithNotes(req.Notes).WithPeriodCount(req.PeriodCount)
	if req.Method != "" {
		d = d.WithMethod(model.PaymentMethod(req.Method))
	}
	if req.ClientID != 0 {
		d = d.WithPayer(req.ClientID)
	}
	if req.Split != nil {
		d = d.WithSplit(req.Split.Cash, req.Split.Transfer)
	}
	if req.PaymentDate != "" {
		// Формат уже проверен валидатором.
		if t, err := time.Parse(dateLayout, req.PaymentDate); err == nil {
			d = d.WithPaymentDate(t)
		}
	}
	return d
}

type splitResponse struct {
	Cash     float64 `json:"cash"`
	Transfer float64 `json:"transfer"`
}

type paymentResponse struct {
	ID           int64          `json:"id"`
	ClientID     int64          `json:"client_id"`
	MembershipID *int64         `json:"membership_id,omitempty"`
	AllocationID string         `json:"allocation_id"`
	Amount       float64        `json:"amount"`
	Method       string         `json:"method"`
	PaymentDate  string         `json:"payment_date"`
	Status       string         `json:"status"`
	PaymentMonth string         `json:"payment_month,omitempty"`
	IsPartial    bool           `json:"is_partial"`
	Split        *splitResponse `json:"split,omitempty"`
	Notes        string         `json:"notes,omitempty"`
}

func toPaymentResponse(p model.Payment) paymentResponse {
	resp := paymentResponse{
		ID:           p.ID,
		ClientID:     p.ClientID,
		MembershipID: p.MembershipID,
		AllocationID: p.AllocationID.String(),
		Amount:       money(p.Amount),
		Method:       string(p.Method),
		PaymentDate:  p.PaymentDate.Format(time.RFC3339),
		Status:       string(p.Status),
		PaymentMonth: p.PaymentMonth,
		IsPartial:    p.IsPartial,
		Notes:        p.Notes,
	}
	if p.Split != nil {
		resp.Split = &splitResponse{Cash: money(p.Split.Cash), Transfer: money(p.Split.Transfer)}
	}
	return resp
}

type statusResponse struct {
	MonthsOwed       int     `json:"months_owed"`
	TotalOwed        float64 `json:"total_owed"`
	MonthsPaid       int     `json:"months_paid"`
	DaysOwed         int     `json:"days_owed"`
	IsOverdue        bool    `json:"is_overdue"`
	IsUpToDate       bool    `json:"is_up_to_date"`
	NextPaymentMonth string  `json:"next_payment_month"`
	PeriodLabel      string  `json:"period_label"`
	ExpectedPeriods  int     `json:"expected_periods"`
	TotalPaid        float64 `json:"total_paid"`
	CurrentPeriod    string  `json:"current_period"`
}

func toStatusResponse(s billing.PaymentStatus) statusResponse {
	return statusResponse{
		MonthsOwed:       s.MonthsOwed,
		TotalOwed:        money(s.TotalOwed),
		MonthsPaid:       s.MonthsPaid,
		DaysOwed:         s.DaysOwed,
		IsOverdue:        s.IsOverdue,
		IsUpToDate:       s.IsUpToDate,
		NextPaymentMonth: s.NextPaymentMonth,
		PeriodLabel:      s.PeriodLabel,
		ExpectedPeriods:  s.ExpectedPeriods,
		TotalPaid:        money(s.TotalPaid),
		CurrentPeriod:    s.CurrentPeriod,
	}
}

type allocatedResponse struct {
	PeriodKey string  `json:"period_key"`
	Amount    float64 `json:"amount"`
	IsPartial bool    `json:"is_partial"`
	Note      string  `json:"note"`
}

type allocationResponse struct {
	DebtPortion    float64             `json:"debt_portion"`
	DebtPayment    *allocatedResponse  `json:"debt_payment,omitempty"`
	AdvancePortion float64             `json:"advance_portion"`
	AdvancePeriods []allocatedResponse `json:"advance_periods"`
}

func toAllocatedResponse(p billing.AllocatedPayment) allocatedResponse {
	return allocatedResponse{
		PeriodKey: p.PeriodKey,
		Amount:    money(p.Amount),
		IsPartial: p.IsPartial,
		Note:      p.Note,
	}
}

func toAllocationResponse(a billing.Allocation) allocationResponse {
	resp := allocationResponse{
		DebtPortion:    money(a.DebtPortion),
		AdvancePortion: money(a.AdvancePortion),
		AdvancePeriods: make([]allocatedResponse, 0, len(a.AdvancePeriods)),
	}
	if a.DebtPayment != nil {
		d := toAllocatedResponse(*a.DebtPayment)
		resp.DebtPayment = &d
	}
	for _, p := range a.AdvancePeriods {
		resp.AdvancePeriods = append(resp.AdvancePeriods, toAllocatedResponse(p))
	}
	return resp
}

type registerPaymentResponse struct {
	Allocation allocationResponse `json:"allocation"`
	Payments   []paymentResponse  `json:"payments"`
}

type auditLogResponse struct {
	ID          int64          `json:"id"`
	ActionType  string         `json:"action_type"`
	EntityType  string         `json:"entity_type"`
	EntityID    int64          `json:"entity_id"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

func toAuditLogResponse(e model.AuditLog) auditLogResponse {
	return auditLogResponse{
		ID:          e.ID,
		ActionType:  e.ActionType,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}
