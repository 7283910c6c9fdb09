package billing

import "errors"

var (
	// ErrPlanNotFound возвращается, если тарифный план абонемента не найден.
	ErrPlanNotFound = errors.New("membership plan not found")
	// ErrInvalidAmount возвращается при неположительной сумме платежа.
	ErrInvalidAmount = errors.New("payment amount must be positive")
	// ErrInvalidDateRange возвращается, если абонемент заканчивается раньше, чем начинается.
	ErrInvalidDateRange = errors.New("membership end date is before start date")
	// ErrInvalidPlan возвращается при отрицательной цене или неположительной длине периода.
	ErrInvalidPlan = errors.New("invalid membership plan")
	// ErrInvalidPeriodCount возвращается, если сумма не покрывает запрошенное число периодов.
	ErrInvalidPeriodCount = errors.New("invalid period count")
	// ErrInvalidDraft возвращается при некорректно заполненном черновике платежа.
	ErrInvalidDraft = errors.New("invalid payment draft")
)
