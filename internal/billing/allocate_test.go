package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/gym-billing/internal/model"
)

func upToDateStatus() PaymentStatus {
	return PaymentStatus{
		TotalOwed:        decimal.Zero,
		IsUpToDate:       true,
		CurrentPeriod:    "2026-10",
		NextPaymentMonth: "2026-11",
	}
}

func owingStatus(owed int64) PaymentStatus {
	return PaymentStatus{
		TotalOwed:        dec(owed),
		MonthsOwed:       1,
		CurrentPeriod:    "2026-10",
		NextPaymentMonth: "2026-11",
	}
}

func sumAdvance(a Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.AdvancePeriods {
		total = total.Add(p.Amount)
	}
	return total
}

func TestAllocate_AdvanceOnlyFullPeriods(t *testing.T) {
	a, err := Allocate(dec(160000), upToDateStatus(), monthlyPlan(), 0)
	require.NoError(t, err)

	assert.True(t, a.DebtPortion.IsZero())
	assert.Nil(t, a.DebtPayment)
	require.Len(t, a.AdvancePeriods, 2)
	for i, p := range a.AdvancePeriods {
		assert.True(t, p.Amount.Equal(dec(80000)), "entry %d amount %s", i, p.Amount)
		assert.False(t, p.IsPartial)
	}
	assert.Equal(t, "2026-11", a.AdvancePeriods[0].PeriodKey)
	assert.Equal(t, "2026-12", a.AdvancePeriods[1].PeriodKey)
	assert.Equal(t, "Pago adelantado mes 1 de 2", a.AdvancePeriods[0].Note)
	assert.Equal(t, "Pago adelantado mes 2 de 2", a.AdvancePeriods[1].Note)
}

func TestAllocate_DebtThenPartialAdvance(t *testing.T) {
	a, err := Allocate(dec(100000), owingStatus(50000), monthlyPlan(), 0)
	require.NoError(t, err)

	assert.True(t, a.DebtPortion.Equal(dec(50000)))
	require.NotNil(t, a.DebtPayment)
	assert.False(t, a.DebtPayment.IsPartial)
	assert.Equal(t, "2026-10", a.DebtPayment.PeriodKey)
	assert.Equal(t, "Pago de deuda", a.DebtPayment.Note)

	assert.True(t, a.AdvancePortion.Equal(dec(50000)))
	require.Len(t, a.AdvancePeriods, 1)
	assert.True(t, a.AdvancePeriods[0].Amount.Equal(dec(50000)))
	assert.True(t, a.AdvancePeriods[0].IsPartial)
	assert.Equal(t, "2026-11", a.AdvancePeriods[0].PeriodKey)
	assert.Equal(t, "Pago adelantado (tras pago de deuda)", a.AdvancePeriods[0].Note)
}

func TestAllocate_DebtFirst(t *testing.T) {
	a, err := Allocate(dec(30000), owingStatus(160000), monthlyPlan(), 3)
	require.NoError(t, err)

	assert.True(t, a.DebtPortion.Equal(dec(30000)))
	assert.True(t, a.AdvancePortion.IsZero())
	assert.Empty(t, a.AdvancePeriods)
	require.NotNil(t, a.DebtPayment)
	assert.True(t, a.DebtPayment.IsPartial)
	assert.Equal(t, "Pago parcial de deuda", a.DebtPayment.Note)
}

func TestAllocate_ExactDebt(t *testing.T) {
	a, err := Allocate(dec(160000), owingStatus(160000), monthlyPlan(), 0)
	require.NoError(t, err)

	assert.True(t, a.DebtPortion.Equal(dec(160000)))
	assert.False(t, a.DebtPayment.IsPartial)
	assert.Empty(t, a.AdvancePeriods)
	assert.Len(t, a.Payments(), 1)
}

func TestAllocate_ExplicitPeriodCountLastAbsorbsRemainder(t *testing.T) {
	a, err := Allocate(dec(250000), upToDateStatus(), monthlyPlan(), 3)
	require.NoError(t, err)

	require.Len(t, a.AdvancePeriods, 3)
	assert.True(t, a.AdvancePeriods[0].Amount.Equal(dec(80000)))
	assert.True(t, a.AdvancePeriods[1].Amount.Equal(dec(80000)))
	assert.True(t, a.AdvancePeriods[2].Amount.Equal(dec(90000)))
	assert.False(t, a.AdvancePeriods[2].IsPartial)
	assert.Equal(t, "2027-01", a.AdvancePeriods[2].PeriodKey)
}

func TestAllocate_ExplicitPeriodCountIgnoredWithDebt(t *testing.T) {
	a, err := Allocate(dec(200000), owingStatus(40000), monthlyPlan(), 5)
	require.NoError(t, err)

	require.Len(t, a.AdvancePeriods, 2)
	assert.True(t, a.AdvancePeriods[0].Amount.Equal(dec(80000)))
	assert.True(t, a.AdvancePeriods[1].Amount.Equal(dec(80000)))
}

func TestAllocate_ExplicitPeriodCountNotCovered(t *testing.T) {
	_, err := Allocate(dec(100000), upToDateStatus(), monthlyPlan(), 3)
	assert.ErrorIs(t, err, ErrInvalidPeriodCount)
}

func TestAllocate_ZeroPricePlan(t *testing.T) {
	plan := &model.MembershipPlan{Price: decimal.Zero, PeriodDays: 30}

	a, err := Allocate(dec(5000), upToDateStatus(), plan, 0)
	require.NoError(t, err)

	require.Len(t, a.AdvancePeriods, 1)
	assert.True(t, a.AdvancePeriods[0].Amount.Equal(dec(5000)))
	assert.False(t, a.AdvancePeriods[0].IsPartial)
}

func TestAllocate_StartsAfterCurrentPeriodWithoutNextMonth(t *testing.T) {
	st := upToDateStatus()
	st.NextPaymentMonth = ""
	st.CurrentPeriod = "2026-12"

	a, err := Allocate(dec(80000), st, monthlyPlan(), 0)
	require.NoError(t, err)
	require.Len(t, a.AdvancePeriods, 1)
	assert.Equal(t, "2027-01", a.AdvancePeriods[0].PeriodKey)
}

func TestAllocate_Errors(t *testing.T) {
	_, err := Allocate(decimal.Zero, upToDateStatus(), monthlyPlan(), 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Allocate(dec(-10), upToDateStatus(), monthlyPlan(), 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Allocate(dec(10), upToDateStatus(), nil, 0)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = Allocate(dec(10), upToDateStatus(), monthlyPlan(), -1)
	assert.ErrorIs(t, err, ErrInvalidPeriodCount)
}

func TestAllocate_RejectsFractionsOfACent(t *testing.T) {
	plan := &model.MembershipPlan{ID: 1, Price: dec(50), PeriodDays: 30}

	_, err := Allocate(decimal.RequireFromString("100.004"), upToDateStatus(), plan, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	plan.Price = decimal.RequireFromString("49.999")
	_, err = Allocate(dec(100), upToDateStatus(), plan, 0)
	require.ErrorIs(t, err, ErrInvalidPlan)

	plan.Price = dec(50)
	a, err := Allocate(decimal.RequireFromString("100.00"), upToDateStatus(), plan, 0)
	require.NoError(t, err)
	assert.Len(t, a.AdvancePeriods, 2)
}

func TestAllocate_ConservesMoney(t *testing.T) {
	amounts := []string{"0.01", "1", "49999.99", "80000", "80000.01", "159999.5", "250000", "1000000.37"}
	debts := []string{"0", "0.5", "50000", "80000", "240000"}
	counts := []int{0, 1, 2, 4}

	for _, raw := range amounts {
		amount := decimal.RequireFromString(raw)
		for _, rawDebt := range debts {
			for _, count := range counts {
				st := upToDateStatus()
				st.TotalOwed = decimal.RequireFromString(rawDebt)

				a, err := Allocate(amount, st, monthlyPlan(), count)
				if err != nil {
					require.ErrorIs(t, err, ErrInvalidPeriodCount)
					continue
				}

				assert.True(t, a.DebtPortion.Add(a.AdvancePortion).Equal(amount),
					"amount %s debt %s count %d", raw, rawDebt, count)
				assert.True(t, sumAdvance(a).Equal(a.AdvancePortion),
					"amount %s debt %s count %d", raw, rawDebt, count)
			}
		}
	}
}
