package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/shopconsole/internal/pkg"
)

// Validator checks entity values against their `validate` struct tags and
// renders per-field messages keyed by JSON field path.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator. Field names in messages follow the json tags.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return pkg.LowerFirst(f.Name)
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates obj and returns a map of field path to message, or nil when
// obj is valid. Errors other than field failures are reported under "_".
func (v *Validator) Struct(obj any) map[string]string {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		key := fieldPath(fe.Namespace())
		if _, dup := fields[key]; !dup {
			fields[key] = pkg.FieldMessage(fe)
		}
	}
	return fields
}

// fieldPath drops the root struct name from a namespace such as
// "QuizQuestion.answers[0].content".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
