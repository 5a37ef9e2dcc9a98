package validator

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterValidation("not_past", validateNotPast)

	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// FieldErrors flattens a validation failure into per-field messages, keyed by
// the lowercased struct field name.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = messageFor(fe)
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "max":
		return "must have at most " + fe.Param() + " entries"
	case "not_past":
		return "must not be in the past"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

func validateNotPast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.Before(time.Now().Add(-time.Minute))
}
