package service

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate runs the same tag rules gin applies at binding time, for values
// that reach the services through other paths such as imports.
var validate = validator.New()

// digitsOnly strips every non-digit rune, e.g. "11.222.333/0001-81" -> "11222333000181".
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeCNPJ returns the 14 digits of a CNPJ, or "" when empty.
func normalizeCNPJ(raw string) (string, error) {
	d := digitsOnly(raw)
	if d == "" {
		return "", nil
	}
	if len(d) != 14 {
		return "", validationError("cnpj must have 14 digits")
	}
	return d, nil
}

func normalizeCPF(raw string) (string, error) {
	d := digitsOnly(raw)
	if d == "" {
		return "", nil
	}
	if len(d) != 11 {
		return "", validationError("cpf must have 11 digits")
	}
	return d, nil
}

func validateEmail(email string, required bool) error {
	if email == "" {
		if required {
			return validationError("email is required")
		}
		return nil
	}
	if err := validate.Var(email, "email"); err != nil {
		return validationError("invalid email format")
	}
	return nil
}

// requireFields returns a validation error naming the first blank field.
func requireFields(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return validationError("%s is required", f[0])
		}
	}
	return nil
}

func parseDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, validationError("%s must be a date (YYYY-MM-DD)", field)
}

func nonNegative(field string, d *decimal.Decimal) error {
	if d != nil && d.IsNegative() {
		return validationError("%s must not be negative", field)
	}
	return nil
}

// setString applies an optional partial-update field.
func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
