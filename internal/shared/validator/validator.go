// Package validator evaluates an ordered list of typed field constraints and
// reports every failing field at once.
package validator

import (
	"errors"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// ErrValidation is matched by errors.Is on any *Error.
var ErrValidation = errors.New("validation failed")

// Field binds a form value to its rules.
type Field struct {
	Name  string
	Value any
	Rules []validation.Rule
}

// F is shorthand for building a Field.
func F(name string, value any, rules ...validation.Rule) Field {
	return Field{Name: name, Value: value, Rules: rules}
}

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + " " + e.Message
}

// Result holds field errors in declaration order.
type Result struct {
	Errors []FieldError
}

func (r Result) OK() bool { return len(r.Errors) == 0 }

// Message concatenates every field error into one line.
func (r Result) Message() string {
	parts := make([]string, 0, len(r.Errors))
	for _, fe := range r.Errors {
		parts = append(parts, fe.String())
	}
	return strings.Join(parts, ", ")
}

// Err returns nil when the result is OK.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Fields: r.Errors, msg: r.Message()}
}

type Error struct {
	Fields []FieldError
	msg    string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Is(target error) bool { return target == ErrValidation }

// Validate checks every field before reporting.
func Validate(fields ...Field) Result {
	var res Result
	for _, f := range fields {
		if err := validation.Validate(f.Value, f.Rules...); err != nil {
			res.Errors = append(res.Errors, FieldError{Field: f.Name, Message: err.Error()})
		}
	}
	return res
}

// ============================================================
// Reusable rules for form strings
// ============================================================

// NotBlank rejects values made only of whitespace.
var NotBlank = validation.By(func(value any) error {
	s, _ := value.(string)
	if s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// Decimal rejects strings that do not parse as a number. Empty passes so
// Required decides.
var Decimal = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return errors.New("must be a number")
	}
	return nil
})

// NonNegative requires a numeric string >= 0.
var NonNegative = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	if d.IsNegative() {
		return errors.New("must be no less than 0")
	}
	return nil
})

// IntBetween requires an integer string within [min, max].
func IntBetween(min, max int) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return errors.New("must be an integer")
		}
		if n < min || n > max {
			return errors.New("must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max))
		}
		return nil
	})
}
