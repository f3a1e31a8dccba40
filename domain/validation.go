package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Violations are reported under the wire names clients send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldLabels are the human wording of wire names used in messages.
var fieldLabels = map[string]string{
	"dueDate": "due date",
	"sortBy":  "sort field",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// check runs the validate tags of rules and reports every failing field once.
// Overrides replace the tag message for their field and are reported even
// when the tags pass, e.g. for input that could not be parsed at all.
func check(rules interface{}, overrides ...Violation) error {
	var list []Violation
	seen := make(map[string]bool)
	override := make(map[string]string, len(overrides))
	for _, o := range overrides {
		if _, dup := override[o.Field]; !dup {
			override[o.Field] = o.Message
		}
	}

	if err := validate.Struct(rules); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return WrapError(ErrCodeInternal, "validation failed", err)
		}
		for _, fe := range fieldErrs {
			field := fe.Field()
			if seen[field] {
				continue
			}
			seen[field] = true
			msg, ok := override[field]
			if !ok {
				msg = violationMessage(fe)
			}
			list = append(list, Violation{Field: field, Message: msg})
		}
	}

	for _, o := range overrides {
		if !seen[o.Field] {
			seen[o.Field] = true
			list = append(list, o)
		}
	}

	if len(list) == 0 {
		return nil
	}
	return NewValidationError(list)
}

func violationMessage(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "email":
		return "a valid email is required"
	case "oneof":
		return fmt.Sprintf("%q is not a valid %s, expected one of: %s",
			fmt.Sprint(fe.Value()), name, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
