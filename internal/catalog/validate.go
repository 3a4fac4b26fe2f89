package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// catalogValidate is the shared validator instance for catalog values.
var catalogValidate = validator.New()

// Validate checks v against its struct tags and returns a KindValidation
// error naming every failing field. op names the calling operation.
func Validate(op string, v any) error {
	err := catalogValidate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewError(KindValidation, op, "invalid value", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return NewError(KindValidation, op, strings.Join(msgs, "; "), err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "hexcolor":
		return fmt.Sprintf("%s %q is not a hex color", field, fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s %v is outside [0,1]", field, fe.Value())
	case "excludesall":
		return fmt.Sprintf("%s %q must not contain %q", field, fe.Value(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s %q must be one of %s", field, fe.Value(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// ValidateOpacity checks a standalone opacity value.
func ValidateOpacity(op string, opacity float64) error {
	if opacity < 0 || opacity > 1 {
		return NewError(KindValidation, op, fmt.Sprintf("opacity %v is outside [0,1]", opacity), nil)
	}
	return nil
}

// ValidateColor checks a standalone hex color. The empty string means "unset".
func ValidateColor(op, color string) error {
	if color == "" {
		return nil
	}
	if err := catalogValidate.Var(color, "hexcolor"); err != nil {
		return NewError(KindValidation, op, fmt.Sprintf("%q is not a hex color", color), err)
	}
	return nil
}
