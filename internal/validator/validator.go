// Package validator wraps go-playground/validator with the rules used by
// gradebook commands and maps failures onto the shared domain error kinds.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ValidationError describes one failed field rule.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is the list of failed rules for one struct.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, e.Field+" "+e.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Validator validates command structs.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the gradebook rules registered.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json name when present.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v := &Validator{validate: validate}
	v.registerRules()
	return v
}

func (v *Validator) registerRules() {
	_ = v.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.validate.RegisterValidation("single_line", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
}

// Validate checks s against its struct tags. It returns nil or a
// *shared.DomainError whose kind reflects the first failed rule and whose
// underlying error is the full ValidationErrors list.
func (v *Validator) Validate(op string, s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return shared.WrapError("validation", op, shared.ErrValidation, "invalid input", err)
	}

	list := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		list = append(list, ValidationError{
			Field:   fieldName(fe),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}

	first := fieldErrs[0]
	return shared.WrapError("validation", op, kindFor(first.Tag()), list[0].Field+" "+list[0].Message, list)
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func kindFor(tag string) error {
	switch tag {
	case "required", "not_blank", "min":
		return shared.ErrEmptyValue
	case "gte", "lte":
		return shared.ErrValueOutOfRange
	case "single_line":
		return shared.ErrInvalidFormat
	default:
		return shared.ErrValidation
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "not_blank":
		return "cannot be empty"
	case "min":
		return fmt.Sprintf("needs at least %s value(s)", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "single_line":
		return "cannot contain line breaks"
	default:
		return fmt.Sprintf("failed rule %s", fe.Tag())
	}
}
