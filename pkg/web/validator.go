package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/go-petr/swift-ledger/internal/domain"
)

// ValidDecimal validates whether the string field holds a decimal number that
// fits domain.MoneyScale fractional digits.
var ValidDecimal validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		d, err := decimal.NewFromString(s)
		return err == nil && domain.HasMoneyScale(d)
	}

	return false
}

// ValidationMessage returns a readable message for a request binding error.
//
// Errors that do not come from the validator yield a generic message.
func ValidationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + GetErrorMsg(field)
	}

	return "invalid request"
}
