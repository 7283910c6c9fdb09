package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/gym-billing/internal/model"
)

// AllocatedPayment описывает одну будущую запись платежа, привязанную к периоду.
type AllocatedPayment struct {
	PeriodKey string          `json:"period_key"`
	Amount    decimal.Decimal `json:"amount"`
	IsPartial bool            `json:"is_partial"`
	Note      string          `json:"note"`
}

// Allocation описывает разложение входящего платежа на погашение долга и авансы.
type Allocation struct {
	DebtPortion    decimal.Decimal    `json:"debt_portion"`
	DebtPayment    *AllocatedPayment  `json:"debt_payment,omitempty"`
	AdvancePortion decimal.Decimal    `json:"advance_portion"`
	AdvancePeriods []AllocatedPayment `json:"advance_periods"`
}

// Payments возвращает все записи разложения по порядку: сначала долг, затем авансы.
func (a Allocation) Payments() []AllocatedPayment {
	res := make([]AllocatedPayment, 0, len(a.AdvancePeriods)+1)
	if a.DebtPayment != nil {
		res = append(res, *a.DebtPayment)
	}
	return append(res, a.AdvancePeriods...)
}

// Allocate раскладывает сумму amount: сначала гасится долг status.TotalOwed,
// остаток распределяется по будущим периодам по одной записи на период.
//
// periodCount — число периодов, выбранное пользователем; 0 означает, что число
// периодов выводится из суммы. Явное число учитывается только при отсутствии долга.
func Allocate(amount decimal.Decimal, status PaymentStatus, plan *model.MembershipPlan, periodCount int) (Allocation, error) {
	if !amount.IsPositive() {
		return Allocation{}, ErrInvalidAmount
	}
	if !IsCentPrecise(amount) {
		return Allocation{}, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, amount, CentPrecision)
	}
	if plan == nil {
		return Allocation{}, ErrPlanNotFound
	}
	if !IsCentPrecise(plan.Price) {
		return Allocation{}, fmt.Errorf("%w: price %s has more than %d decimals", ErrInvalidPlan, plan.Price, CentPrecision)
	}
	if periodCount < 0 {
		return Allocation{}, fmt.Errorf("%w: %d", ErrInvalidPeriodCount, periodCount)
	}

	debt := status.TotalOwed
	if debt.IsNegative() {
		debt = decimal.Zero
	}

	res := Allocation{
		DebtPortion:    decimal.Min(amount, debt),
		AdvancePortion: decimal.Zero,
	}

	label := LabelFor(plan.PeriodDays)

	if res.DebtPortion.IsPositive() {
		partial := res.DebtPortion.LessThan(debt)
		note := "Pago de deuda"
		if partial {
			note = "Pago parcial de deuda"
		}
		res.DebtPayment = &AllocatedPayment{
			PeriodKey: status.CurrentPeriod,
			Amount:    res.DebtPortion,
			IsPartial: partial,
			Note:      note,
		}
	}

	advance := amount.Sub(debt)
	if !advance.IsPositive() {
		return res, nil
	}
	res.AdvancePortion = advance

	var amounts []decimal.Decimal
	switch {
	case periodCount > 0 && !debt.IsPositive():
		var err error
		amounts, err = explicitSplit(advance, plan.Price, periodCount)
		if err != nil {
			return Allocation{}, err
		}
	default:
		amounts = derivedSplit(advance, plan.Price)
	}

	start, err := firstAdvancePeriod(status)
	if err != nil {
		return Allocation{}, err
	}

	total := len(amounts)
	afterDebt := res.DebtPayment != nil
	res.AdvancePeriods = make([]AllocatedPayment, 0, total)
	for i, a := range amounts {
		res.AdvancePeriods = append(res.AdvancePeriods, AllocatedPayment{
			PeriodKey: start.AddMonths(i).String(),
			Amount:    a,
			IsPartial: plan.Price.IsPositive() && a.LessThan(plan.Price),
			Note:      advanceNote(label, i+1, total, afterDebt),
		})
	}

	return res, nil
}

// explicitSplit делит аванс на count периодов по цене плана; последний период забирает остаток.
func explicitSplit(advance, price decimal.Decimal, count int) ([]decimal.Decimal, error) {
	full := price.Mul(decimal.NewFromInt(int64(count - 1)))
	last := advance.Sub(full)
	if !last.IsPositive() {
		return nil, fmt.Errorf("%w: %s does not cover %d periods of %s", ErrInvalidPeriodCount, advance, count, price)
	}

	res := make([]decimal.Decimal, 0, count)
	for i := 0; i < count-1; i++ {
		res = append(res, price)
	}
	return append(res, last), nil
}

// derivedSplit делит аванс на целые периоды по цене плана и один частичный период с остатком.
func derivedSplit(advance, price decimal.Decimal) []decimal.Decimal {
	if !price.IsPositive() {
		return []decimal.Decimal{advance}
	}

	count := advance.Div(price).Floor().IntPart()
	res := make([]decimal.Decimal, 0, count+1)
	for i := int64(0); i < count; i++ {
		res = append(res, price)
	}

	leftover := advance.Sub(price.Mul(decimal.NewFromInt(count)))
	if leftover.IsPositive() {
		res = append(res, leftover)
	}
	return res
}

func firstAdvancePeriod(status PaymentStatus) (Period, error) {
	if status.NextPaymentMonth != "" {
		return ParsePeriod(status.NextPaymentMonth)
	}
	current, err := ParsePeriod(status.CurrentPeriod)
	if err != nil {
		return Period{}, fmt.Errorf("current period: %w", err)
	}
	return current.Next(), nil
}

func advanceNote(label PeriodLabel, k, n int, afterDebt bool) string {
	note := "Pago adelantado"
	if n > 1 {
		note = fmt.Sprintf("Pago adelantado %s %d de %d", label.Singular, k, n)
	}
	if afterDebt {
		note += " (tras pago de deuda)"
	}
	return note
}
