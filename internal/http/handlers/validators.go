package handlers

import (
	"unicode"

	"github.com/codelens/taskhub/internal/domain/task"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding rules on gin's validator
// engine. Must run before any route is mounted.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)

	if !ok {
		return nil
	}

	if err := v.RegisterValidation("strongpassword", strongPassword); err != nil {
		return err
	}

	return v.RegisterValidation("todayorlater", todayOrLater)
}

func strongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit, special bool

	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	return upper && lower && digit && special
}

// todayOrLater rejects due dates strictly before local midnight today.
func todayOrLater(fl validator.FieldLevel) bool {
	t, err := task.ParseDueDate(fl.Field().String())

	if err != nil {
		return false
	}

	return !task.BeforeToday(t)
}
