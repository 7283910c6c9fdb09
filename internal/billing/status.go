// Package billing рассчитывает задолженность по абонементам и раскладывает входящие платежи по периодам.
//
// Функции пакета чистые: время передаётся явно, ввод-вывода и общего состояния нет.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/gym-billing/internal/model"
)

// PaymentStatus описывает состояние оплаты абонемента на момент расчёта.
type PaymentStatus struct {
	MonthsOwed       int             `json:"months_owed"`
	TotalOwed        decimal.Decimal `json:"total_owed"`
	MonthsPaid       int             `json:"months_paid"`
	DaysOwed         int             `json:"days_owed"`
	IsOverdue        bool            `json:"is_overdue"`
	IsUpToDate       bool            `json:"is_up_to_date"`
	NextPaymentMonth string          `json:"next_payment_month"`
	PeriodLabel      string          `json:"period_label"`
	ExpectedPeriods  int             `json:"expected_periods"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	CurrentPeriod    string          `json:"current_period"`
}

// Compute рассчитывает состояние оплаты абонемента на дату now.
//
// payments может содержать платежи клиента по любым абонементам: учитываются только
// завершённые платежи указанного абонемента. Неактивные и приостановленные клиенты
// никогда не считаются должниками.
func Compute(now time.Time, client model.Client, membership model.Membership, plan *model.MembershipPlan, payments []model.Payment) (PaymentStatus, error) {
	if plan == nil {
		return PaymentStatus{}, ErrPlanNotFound
	}
	if plan.Price.IsNegative() || plan.PeriodDays <= 0 {
		return PaymentStatus{}, fmt.Errorf("%w: price %s, period %d days", ErrInvalidPlan, plan.Price, plan.PeriodDays)
	}

	start := Day(membership.StartDate)
	end := Day(membership.EndDate)
	if end.Before(start) {
		return PaymentStatus{}, ErrInvalidDateRange
	}

	today := Day(now)
	current := PeriodOf(today)
	label := LabelFor(plan.PeriodDays)

	if client.Status != model.ClientStatusActive {
		return PaymentStatus{
			IsUpToDate:       true,
			NextPaymentMonth: current.Next().String(),
			PeriodLabel:      label.Plural,
			TotalOwed:        decimal.Zero,
			TotalPaid:        decimal.Zero,
			CurrentPeriod:    current.String(),
		}, nil
	}

	referenceEnd := today
	if end.Before(today) {
		referenceEnd = end
	}
	expected := ElapsedPeriods(start, referenceEnd, plan.PeriodDays)
	expectedTotal := plan.Price.Mul(decimal.NewFromInt(int64(expected)))

	totalPaid := decimal.Zero
	var latestAdvance Period
	for _, p := range payments {
		if !counts(p, membership.ID) {
			continue
		}
		totalPaid = totalPaid.Add(p.Amount)

		if p.PaymentMonth == "" {
			continue
		}
		tagged, err := ParsePeriod(p.PaymentMonth)
		if err != nil {
			continue
		}
		if tagged.After(current) && tagged.After(latestAdvance) {
			latestAdvance = tagged
		}
	}

	owed := expectedTotal.Sub(totalPaid)
	if owed.IsNegative() {
		owed = decimal.Zero
	}

	monthsOwed := periodsOwed(owed, plan.Price)

	monthsPaid := 0
	if plan.Price.IsPositive() {
		monthsPaid = int(totalPaid.Div(plan.Price).Floor().IntPart())
	}

	next := current.Next()
	if !latestAdvance.IsZero() {
		next = latestAdvance.Next()
	}

	return PaymentStatus{
		MonthsOwed:       monthsOwed,
		TotalOwed:        owed,
		MonthsPaid:       monthsPaid,
		DaysOwed:         monthsOwed * plan.PeriodDays,
		IsOverdue:        end.Before(today),
		IsUpToDate:       owed.IsZero(),
		NextPaymentMonth: next.String(),
		PeriodLabel:      label.For(monthsOwed),
		ExpectedPeriods:  expected,
		TotalPaid:        totalPaid,
		CurrentPeriod:    current.String(),
	}, nil
}

func counts(p model.Payment, membershipID int64) bool {
	return p.Status == model.PaymentStatusCompleted &&
		p.MembershipID != nil &&
		*p.MembershipID == membershipID
}

// periodsOwed округляет долг вверх до целых периодов; любой ненулевой долг — минимум один период.
// Бесплатный план периодов не начисляет.
func periodsOwed(owed, price decimal.Decimal) int {
	if !price.IsPositive() || !owed.IsPositive() {
		return 0
	}
	n := int(owed.Div(price).Ceil().IntPart())
	if n < 1 {
		n = 1
	}
	return n
}

// Aggregate сводит состояния нескольких абонементов клиента в одно.
func Aggregate(statuses ...PaymentStatus) PaymentStatus {
	res := PaymentStatus{
		TotalOwed: decimal.Zero,
		TotalPaid: decimal.Zero,
	}
	if len(statuses) == 0 {
		res.IsUpToDate = true
		res.PeriodLabel = GenericPeriodLabel.Plural
		return res
	}

	var next Period
	family, sameLabel := labelFamily(statuses[0].PeriodLabel)
	for _, s := range statuses {
		res.MonthsOwed += s.MonthsOwed
		res.TotalOwed = res.TotalOwed.Add(s.TotalOwed)
		res.MonthsPaid += s.MonthsPaid
		res.DaysOwed += s.DaysOwed
		res.ExpectedPeriods += s.ExpectedPeriods
		res.TotalPaid = res.TotalPaid.Add(s.TotalPaid)
		res.IsOverdue = res.IsOverdue || s.IsOverdue

		if res.CurrentPeriod == "" {
			res.CurrentPeriod = s.CurrentPeriod
		}
		if p, err := ParsePeriod(s.NextPaymentMonth); err == nil && (next.IsZero() || p.Before(next)) {
			next = p
		}
		if f, ok := labelFamily(s.PeriodLabel); !ok || f != family {
			sameLabel = false
		}
	}

	res.IsUpToDate = res.TotalOwed.IsZero()
	res.NextPaymentMonth = next.String()
	if !sameLabel {
		family = GenericPeriodLabel
	}
	res.PeriodLabel = family.For(res.MonthsOwed)
	return res
}

func labelFamily(label string) (PeriodLabel, bool) {
	for _, l := range PeriodLabels {
		if label == l.Singular || label == l.Plural {
			return l, true
		}
	}
	if label == GenericPeriodLabel.Singular || label == GenericPeriodLabel.Plural {
		return GenericPeriodLabel, true
	}
	return PeriodLabel{}, false
}
