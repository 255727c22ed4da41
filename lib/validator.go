package lib

import (
	"github.com/go-playground/validator/v10"
	"github.com/terracapital/marketplace/lib/market"
)

type CustomValidator struct {
	Validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.Validator.Struct(i)
}

// NewValidator registers the "amount" tag for string fields carrying a non-negative
// integer inside the 128-bit range.
func NewValidator() *CustomValidator {
	v := validator.New()
	err := v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := market.ParseAmount(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	if err != nil {
		panic(err)
	}
	return &CustomValidator{Validator: v}
}
