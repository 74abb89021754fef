package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full list of field-level problems found in an input.
type ValidationError struct {
	Fields []FieldError
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field error was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validation constants
const (
	MinActorIDLength      = 3
	MinActorNameLength    = 2
	MinCancelReasonLength = 10
	MinRejectReasonLength = 5
	MaxRejectReasonLength = 500
	MinReviewNotesLength  = 10
	CurrencyCodeLength    = 3
	MaxTransactionAmount  = "1000000000000"
)

// Valid currency codes (ISO 4217) handled by the back office.
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "NOK": true, "MXN": true,
	"INR": true, "BRL": true, "ZAR": true, "TRY": true,
	"XOF": true, "XAF": true, "MAD": true, "GNF": true,
	"NGN": true, "GHS": true, "KES": true, "AED": true,
}

// IsValidCurrency reports whether code is a supported ISO 4217 code.
func IsValidCurrency(code string) bool {
	return validCurrencies[strings.ToUpper(strings.TrimSpace(code))]
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a supported ISO 4217 currency code", ErrValidation, currency)
	}

	return nil
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// TextLength counts the characters of s, ignoring surrounding whitespace.
func TextLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return IsValidCurrency(fl.Field().String())
	})

	return v
}

// ValidateStruct runs struct-tag validation and converts failures into a *ValidationError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), describeFieldError(fe))
	}

	return out.OrNil()
}

// MergeValidation appends the field errors of err (if it is a *ValidationError) to dst.
func MergeValidation(dst *ValidationError, err error) error {
	if err == nil {
		return nil
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		dst.Fields = append(dst.Fields, verr.Fields...)
		return nil
	}

	return err
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "currency":
		return "must be a supported ISO 4217 currency code"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
