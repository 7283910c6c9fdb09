package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/gym-billing/internal/model"
)

func TestPaymentDraft_IsImmutable(t *testing.T) {
	base := NewPaymentDraft(dec(80000))
	withCount := base.WithPeriodCount(2)
	mixed := base.WithSplit(dec(50000), dec(30000))

	assert.Equal(t, 0, base.PeriodCount())
	assert.Equal(t, 2, withCount.PeriodCount())
	assert.Equal(t, model.PaymentMethodCash, base.Method())
	assert.Nil(t, base.Split())
	assert.Equal(t, model.PaymentMethodMixed, mixed.Method())
	assert.Equal(t, int64(9), base.WithPayer(9).WithNotes("x").Payer())
	assert.Zero(t, base.Payer())
}

func TestPaymentDraft_Validate(t *testing.T) {
	tests := []struct {
		name    string
		draft   PaymentDraft
		wantErr error
	}{
		{
			name:  "cash",
			draft: NewPaymentDraft(dec(1000)),
		},
		{
			name:  "card with count",
			draft: NewPaymentDraft(dec(1000)).WithMethod(model.PaymentMethodCard).WithPeriodCount(2),
		},
		{
			name:  "mixed",
			draft: NewPaymentDraft(dec(1000)).WithSplit(dec(400), dec(600)),
		},
		{
			name:    "zero amount",
			draft:   NewPaymentDraft(decimal.Zero),
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown method",
			draft:   NewPaymentDraft(dec(1000)).WithMethod("crypto"),
			wantErr: ErrInvalidDraft,
		},
		{
			name:    "mixed without split",
			draft:   NewPaymentDraft(dec(1000)).WithMethod(model.PaymentMethodMixed),
			wantErr: ErrInvalidDraft,
		},
		{
			name:    "split does not add up",
			draft:   NewPaymentDraft(dec(1000)).WithSplit(dec(400), dec(500)),
			wantErr: ErrInvalidDraft,
		},
		{
			name:    "negative split part",
			draft:   NewPaymentDraft(dec(1000)).WithSplit(dec(1100), dec(-100)),
			wantErr: ErrInvalidDraft,
		},
		{
			name:    "fraction of a cent",
			draft:   NewPaymentDraft(decimal.RequireFromString("100.004")),
			wantErr: ErrInvalidAmount,
		},
		{
			name:  "trailing zeros beyond cents",
			draft: NewPaymentDraft(decimal.RequireFromString("100.500")),
		},
		{
			name: "split part with fraction of a cent",
			draft: NewPaymentDraft(dec(100)).
				WithSplit(decimal.RequireFromString("40.005"), decimal.RequireFromString("59.995")),
			wantErr: ErrInvalidDraft,
		},
		{
			name:    "negative payer",
			draft:   NewPaymentDraft(dec(1000)).WithPayer(-3),
			wantErr: ErrInvalidDraft,
		},
		{
			name:  "explicit payer",
			draft: NewPaymentDraft(dec(1000)).WithPayer(12),
		},
		{
			name:    "negative period count",
			draft:   NewPaymentDraft(dec(1000)).WithPeriodCount(-1),
			wantErr: ErrInvalidPeriodCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPaymentDraft_WithMethodDropsSplit(t *testing.T) {
	d := NewPaymentDraft(dec(1000)).WithSplit(dec(400), dec(600)).WithMethod(model.PaymentMethodTransfer)

	assert.Nil(t, d.Split())
	assert.NoError(t, d.Validate())
}

func TestPaymentDraft_SplitForSpendsCashFirst(t *testing.T) {
	d := NewPaymentDraft(dec(200000)).WithSplit(dec(100000), dec(100000))
	rows := []decimal.Decimal{dec(50000), dec(80000), dec(70000)}

	splits := d.SplitFor(rows)
	require.Len(t, splits, 3)

	assert.True(t, splits[0].Cash.Equal(dec(50000)))
	assert.True(t, splits[0].Transfer.IsZero())
	assert.True(t, splits[1].Cash.Equal(dec(50000)))
	assert.True(t, splits[1].Transfer.Equal(dec(30000)))
	assert.True(t, splits[2].Cash.IsZero())
	assert.True(t, splits[2].Transfer.Equal(dec(70000)))

	for i, s := range splits {
		assert.True(t, s.Cash.Add(s.Transfer).Equal(rows[i]), "row %d", i)
	}
}

func TestPaymentDraft_SplitForNonMixed(t *testing.T) {
	splits := NewPaymentDraft(dec(10)).SplitFor([]decimal.Decimal{dec(5), dec(5)})
	assert.Equal(t, []*model.SplitPayment{nil, nil}, splits)
}
