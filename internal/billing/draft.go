package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/gym-billing/internal/model"
)

// PaymentDraft накапливает выбор пользователя перед регистрацией платежа.
// Значение неизменяемо: каждый With-метод возвращает копию.
type PaymentDraft struct {
	amount      decimal.Decimal
	method      model.PaymentMethod
	split       *model.SplitPayment
	periodCount int
	paymentDate time.Time
	notes       string
	payerID     int64
}

// NewPaymentDraft создаёт черновик на сумму amount с оплатой наличными.
func NewPaymentDraft(amount decimal.Decimal) PaymentDraft {
	return PaymentDraft{
		amount: amount,
		method: model.PaymentMethodCash,
	}
}

func (d PaymentDraft) WithMethod(m model.PaymentMethod) PaymentDraft {
	d.method = m
	if m != model.PaymentMethodMixed {
		d.split = nil
	}
	return d
}

// WithSplit задаёт смешанную оплату и переключает способ оплаты на mixed.
func (d PaymentDraft) WithSplit(cash, transfer decimal.Decimal) PaymentDraft {
	d.method = model.PaymentMethodMixed
	d.split = &model.SplitPayment{Cash: cash, Transfer: transfer}
	return d
}

func (d PaymentDraft) WithPeriodCount(n int) PaymentDraft {
	d.periodCount = n
	return d
}

func (d PaymentDraft) WithPaymentDate(t time.Time) PaymentDraft {
	d.paymentDate = t
	return d
}

func (d PaymentDraft) WithNotes(notes string) PaymentDraft {
	d.notes = notes
	return d
}

// WithPayer указывает клиента, вносящего платёж по общему абонементу. 0 означает владельца.
func (d PaymentDraft) WithPayer(clientID int64) PaymentDraft {
	d.payerID = clientID
	return d
}

func (d PaymentDraft) Amount() decimal.Decimal { return d.amount }
func (d PaymentDraft) Method() model.PaymentMethod { return d.method }
func (d PaymentDraft) Split() *model.SplitPayment { return d.split }
func (d PaymentDraft) PeriodCount() int { return d.periodCount }
func (d PaymentDraft) PaymentDate() time.Time { return d.paymentDate }
func (d PaymentDraft) Notes() string { return d.notes }
func (d PaymentDraft) Payer() int64 { return d.payerID }

// Validate проверяет черновик непосредственно перед вызовом Allocate.
func (d PaymentDraft) Validate() error {
	if !d.amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !IsCentPrecise(d.amount) {
		return fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, d.amount, CentPrecision)
	}
	if !d.method.Valid() {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidDraft, d.method)
	}
	if d.periodCount < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPeriodCount, d.periodCount)
	}
	if d.payerID < 0 {
		return fmt.Errorf("%w: payer %d", ErrInvalidDraft, d.payerID)
	}

	if d.method != model.PaymentMethodMixed {
		if d.split != nil {
			return fmt.Errorf("%w: split is only allowed for mixed payments", ErrInvalidDraft)
		}
		return nil
	}

	if d.split == nil {
		return fmt.Errorf("%w: mixed payment requires split", ErrInvalidDraft)
	}
	if d.split.Cash.IsNegative() || d.split.Transfer.IsNegative() {
		return fmt.Errorf("%w: split parts must not be negative", ErrInvalidDraft)
	}
	if !IsCentPrecise(d.split.Cash) || !IsCentPrecise(d.split.Transfer) {
		return fmt.Errorf("%w: split parts must not have more than %d decimals", ErrInvalidDraft, CentPrecision)
	}
	if !d.split.Cash.Add(d.split.Transfer).Equal(d.amount) {
		return fmt.Errorf("%w: split %s + %s does not match amount %s",
			ErrInvalidDraft, d.split.Cash, d.split.Transfer, d.amount)
	}
	return nil
}

// SplitFor распределяет смешанную оплату по записям разложения: сначала расходуются наличные,
// затем перевод. Для прочих способов оплаты возвращает nil для каждой записи.
func (d PaymentDraft) SplitFor(amounts []decimal.Decimal) []*model.SplitPayment {
	res := make([]*model.SplitPayment, len(amounts))
	if d.split == nil {
		return res
	}

	cashLeft := d.split.Cash
	for i, a := range amounts {
		cash := decimal.Min(a, cashLeft)
		cashLeft = cashLeft.Sub(cash)
		res[i] = &model.SplitPayment{
			Cash:     cash,
			Transfer: a.Sub(cash),
		}
	}
	return res
}
