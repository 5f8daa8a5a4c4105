package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"studyhub/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator provides request validation functionality
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance. Errors are reported by JSON field name.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s against its `validate` tags.
func (v *Validator) Struct(s interface{}) domain.ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.ValidationErrors{{
			Field:   "request",
			Code:    domain.CodeValidation,
			Message: err.Error(),
		}}
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, toValidationError(fe))
	}
	return out
}

func toValidationError(fe validator.FieldError) domain.ValidationError {
	// dive errors are reported as question_types[1]; report the field itself.
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}

	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "min", "max":
		if fe.Kind() == reflect.Int {
			return domain.ValidationError{
				Field:   field,
				Code:    domain.CodeOutOfRange,
				Message: fmt.Sprintf("%s must be %s %s", field, boundWord(fe.Tag()), fe.Param()),
				Value:   fe.Value(),
			}
		}
		return domain.ValidationError{
			Field:   field,
			Code:    domain.CodeOutOfRange,
			Message: fmt.Sprintf("%s length must be %s %s", field, boundWord(fe.Tag()), fe.Param()),
		}
	case "oneof":
		return domain.ValidationError{
			Field:   field,
			Code:    domain.CodeInvalidFormat,
			Message: fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")),
			Value:   fe.Value(),
		}
	}
	return domain.NewInvalidFormatError(field, fe.Value())
}

func boundWord(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}
