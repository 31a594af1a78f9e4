package binder

import (
	"context"
	"reflect"

	"github.com/go-playground/mold/v4"
	"github.com/shishobooks/catalog/pkg/htmlutil"
)

// escapeModifier HTML-escapes string fields. It's idempotent, so values that
// are echoed back and resubmitted don't get escaped twice.
func escapeModifier(_ context.Context, fl mold.FieldLevel) error {
	return modifyString(fl, htmlutil.Escape)
}

// stripTagsModifier reduces markup to plain text.
func stripTagsModifier(_ context.Context, fl mold.FieldLevel) error {
	return modifyString(fl, htmlutil.StripTags)
}

func modifyString(fl mold.FieldLevel, fn func(string) string) error {
	field := fl.Field()
	if field.Kind() != reflect.String || !field.CanSet() {
		return nil
	}
	field.SetString(fn(field.String()))
	return nil
}
