package binder

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	// iso8601Layouts are the calendar date forms accepted from date inputs
	// and hand-typed values.
	iso8601Layouts = []string{
		time.DateOnly,
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	}
)

// iso8601Validator accepts any value ParseDate can turn into a time, or the
// empty string.
func iso8601Validator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := ParseDate(value)
	return err == nil
}

// ParseDate converts a submitted ISO 8601 date into a time. The empty string
// yields nil.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range iso8601Layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.Errorf("%q is not an ISO 8601 date", value)
}
