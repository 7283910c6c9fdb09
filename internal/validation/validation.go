// Package validation содержит функции валидации входных данных.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmeshcher/gym-billing/internal/billing"
	"github.com/mmeshcher/gym-billing/internal/model"
)

// New создаёт валидатор с доменными тегами:
//
//	periodkey    — ключ периода в формате YYYY-MM;
//	paymethod    — известный способ оплаты;
//	clientstatus — допустимый статус клиента.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// RegisterValidation возвращает ошибку только для пустого имени тега.
	_ = v.RegisterValidation("periodkey", func(fl validator.FieldLevel) bool {
		return IsValidPeriodKey(fl.Field().String())
	})
	_ = v.RegisterValidation("paymethod", func(fl validator.FieldLevel) bool {
		return model.PaymentMethod(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("clientstatus", func(fl validator.FieldLevel) bool {
		return model.ClientStatus(fl.Field().String()).Valid()
	})

	return v
}

// IsValidPeriodKey проверяет ключ периода в формате YYYY-MM.
func IsValidPeriodKey(key string) bool {
	_, err := billing.ParsePeriod(key)
	return err == nil
}

// Describe превращает ошибки валидации в человекочитаемое сообщение.
func Describe(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "periodkey":
			msgs = append(msgs, fmt.Sprintf("field %s must be a period in format YYYY-MM", e.Field()))
		case "paymethod":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of cash, transfer, card, mixed", e.Field()))
		case "clientstatus":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of active, inactive, suspended", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", e.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}
