package crud

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldKind selects the input a dialog renders.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindTime     FieldKind = "time"
	KindDateTime FieldKind = "datetime-local"
	KindSelect   FieldKind = "select"
	KindTextArea FieldKind = "textarea"
)

// DateTimeLayout is the format of datetime-local inputs.
const DateTimeLayout = "2006-01-02T15:04"

// Field binds one dialog input to a record field. Name must match the record's JSON name so
// validation messages can be attributed to it.
type Field[T any] struct {
	Name     string
	Label    string
	Kind     FieldKind
	Options  []string
	Required bool
	Get      func(T) string
	Set      func(*T, string) error
}

// Text binds a string field.
func Text[T any](name, label string, get func(T) string, set func(*T, string)) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindText,
		Get:   get,
		Set: func(rec *T, v string) error {
			set(rec, strings.TrimSpace(v))
			return nil
		},
	}
}

// Select binds a string field restricted to options.
func Select[T any](name, label string, options []string, get func(T) string, set func(*T, string)) Field[T] {
	f := Text(name, label, get, set)
	f.Kind = KindSelect
	f.Options = options
	return f
}

// Int binds an integer field. Empty input is zero.
func Int[T any](name, label string, get func(T) int, set func(*T, int)) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindNumber,
		Get:   func(rec T) string { return strconv.Itoa(get(rec)) },
		Set: func(rec *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				set(rec, 0)
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be a whole number", label)
			}
			set(rec, n)
			return nil
		},
	}
}

// Float binds a decimal field. Empty input is zero.
func Float[T any](name, label string, get func(T) float64, set func(*T, float64)) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindNumber,
		Get:   func(rec T) string { return strconv.FormatFloat(get(rec), 'f', -1, 64) },
		Set: func(rec *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				set(rec, 0)
				return nil
			}
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s must be a number", label)
			}
			set(rec, n)
			return nil
		},
	}
}

// DateTime binds a time field edited through a datetime-local input.
func DateTime[T any](name, label string, get func(T) time.Time, set func(*T, time.Time)) Field[T] {
	return Field[T]{
		Name:     name,
		Label:    label,
		Kind:     KindDateTime,
		Required: true,
		Get: func(rec T) string {
			t := get(rec)
			if t.IsZero() {
				return ""
			}
			return t.Format(DateTimeLayout)
		},
		Set: func(rec *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				return fmt.Errorf("%s is required", label)
			}
			t, err := time.Parse(DateTimeLayout, v)
			if err != nil {
				if t, err = time.Parse(time.RFC3339, v); err != nil {
					return fmt.Errorf("%s must be a date and time", label)
				}
			}
			set(rec, t)
			return nil
		},
	}
}

// Mark sets the input kind and required flag on a field.
func (f Field[T]) Mark(kind FieldKind, required bool) Field[T] {
	f.Kind = kind
	f.Required = required
	return f
}

// FieldValue is a field with its current dialog value, ready to render.
type FieldValue struct {
	Name     string
	Label    string
	Kind     FieldKind
	Options  []string
	Required bool
	Value    string
	Problem  string
}
