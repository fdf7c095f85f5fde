package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Kariqs/storefront-api/models"
	"github.com/go-playground/validator/v10"
)

type Validator interface {
	// Validate returns a *ValidationError describing every invalid field, or nil.
	Validate(payload any) error
}

type StructValidator struct {
	v *validator.Validate
}

func NewValidator() *StructValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("paymentlabel", func(fl validator.FieldLevel) bool {
		return models.PaymentMethodLabel(fl.Field().String()).Valid()
	})
	return &StructValidator{v: v}
}

func (s *StructValidator) Validate(payload any) error {
	err := s.v.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: []string{err.Error()}}
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, describeFieldError(fe))
	}
	return &ValidationError{Fields: fields}
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "paymentlabel":
		return fmt.Sprintf("%s must be one of %q, %q, %q", field,
			models.CashOnDelivery, models.MobileMoney, models.CreditDebitCard)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
