package utils

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	indianMobile = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// Validator returns the shared struct validator with the project rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("inmobile", func(fl validator.FieldLevel) bool {
			return indianMobile.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidMobile reports whether phone is a 10-digit mobile number.
func ValidMobile(phone string) bool {
	return indianMobile.MatchString(phone)
}
