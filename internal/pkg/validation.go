package pkg

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldMessage renders a validator field error as a sentence shown next to
// the offending input.
func FieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max", "lte":
		return "Must be at most " + fe.Param() + unit(fe)
	case "min", "gte":
		return "Must be at least " + fe.Param() + unit(fe)
	case "gtefield":
		return "Must be on or after " + LowerFirst(fe.Param())
	case "ltefield":
		return "Must be on or before " + LowerFirst(fe.Param())
	case "email":
		return "Must be a valid email address"
	case "url":
		return "Must be a valid URL"
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "datetime":
		return "Must match the layout " + fe.Param()
	default:
		return fmt.Sprintf("Failed the %q check", fe.Tag())
	}
}

func unit(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	default:
		return ""
	}
}

// LowerFirst lowercases the first rune of s.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
