package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPeriodKey(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{name: "regular month", key: "2026-10", valid: true},
		{name: "january", key: "2027-01", valid: true},
		{name: "empty", key: "", valid: false},
		{name: "month out of range", key: "2026-13", valid: false},
		{name: "full date", key: "2026-10-01", valid: false},
		{name: "wrong separator", key: "2026/10", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidPeriodKey(tt.key))
		})
	}
}

type sample struct {
	Name   string `validate:"required"`
	Month  string `validate:"omitempty,periodkey"`
	Method string `validate:"paymethod"`
	Status string `validate:"omitempty,clientstatus"`
}

func TestNew_DomainTags(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(sample{Name: "Ana", Month: "2026-10", Method: "mixed", Status: "suspended"}))
	require.NoError(t, v.Struct(sample{Name: "Ana", Method: "cash"}))

	err := v.Struct(sample{Month: "10-2026", Method: "crypto", Status: "gone"})
	require.Error(t, err)

	msg := Describe(err)
	assert.Contains(t, msg, "field Name is required")
	assert.Contains(t, msg, "field Month must be a period in format YYYY-MM")
	assert.Contains(t, msg, "field Method must be one of cash, transfer, card, mixed")
	assert.Contains(t, msg, "field Status must be one of active, inactive, suspended")
}
