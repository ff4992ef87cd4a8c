package crud

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned by Submit when the dialog's values fail validation. The dialog
// stays open and Message is shown in it.
type ValidationError struct {
	Message string
	Fields  map[string]string // Field name -> problem
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// recordValidator wraps go-playground/validator, reporting fields by their JSON name so messages
// line up with the dialog fields.
type recordValidator struct {
	v *validator.Validate
}

func newRecordValidator() *recordValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &recordValidator{v: v}
}

func (rv *recordValidator) validate(rec any, labels map[string]string) error {
	err := rv.v.Struct(rec)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(ve))}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		label, ok := labels[fe.Field()]
		if !ok {
			label = fe.Field()
		}
		msg := fieldError(label, fe)
		out.Fields[fe.Field()] = msg
		msgs = append(msgs, msg)
	}
	out.Message = strings.Join(msgs, "; ")
	return out
}

func fieldError(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, fe.Tag())
	}
}
