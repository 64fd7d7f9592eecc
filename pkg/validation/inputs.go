// Package validation checks raw user input at the application boundary before it
// reaches the numeric core in package loans.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
)

// Form field names as submitted by the loan calculator form.
const (
	FieldLoanAmount   = "loanAmount"
	FieldInterestRate = "interestRate"
	FieldTermYears    = "termYears"
)

var fieldLabels = map[string]string{
	FieldLoanAmount:   "amount",
	FieldInterestRate: "rate",
	FieldTermYears:    "terms (years)",
}

// ErrInvalidInput is matched by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError describes one form field that cannot be used for a calculation.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrInvalidInput) hold for any InvalidInputError.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Label returns the human name of the field used in messages.
func Label(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

func notANumber(field, value string) *InvalidInputError {
	return &InvalidInputError{
		Field: field,
		Value: value,
		Reason: fmt.Sprintf("%s must be a `number` type, but the final value was: `NaN` (cast from the value `%q`).",
			Label(field), value),
	}
}

func outOfRange(field string, value float64, constraint string) *InvalidInputError {
	return &InvalidInputError{
		Field:  field,
		Value:  strconv.FormatFloat(value, 'f', -1, 64),
		Reason: fmt.Sprintf("%s must be %s", Label(field), constraint),
	}
}

// ParseLoanInputs converts the raw form text into LoanInputs. Every failing field is
// reported; the returned error is an errors.Join of *InvalidInputError values.
func ParseLoanInputs(loanAmount, interestRate, termYears string) (loans.LoanInputs, error) {
	var errs []error

	parse := func(field, raw string) float64 {
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			errs = append(errs, notANumber(field, raw))
			return 0
		}
		return value
	}

	inputs := loans.LoanInputs{
		Principal:         parse(FieldLoanAmount, loanAmount),
		AnnualRatePercent: parse(FieldInterestRate, interestRate),
		TermYears:         parse(FieldTermYears, termYears),
	}
	if len(errs) > 0 {
		return loans.LoanInputs{}, errors.Join(errs...)
	}

	if err := ValidateLoanInputs(inputs); err != nil {
		return loans.LoanInputs{}, err
	}
	return inputs, nil
}

// ValidateLoanInputs checks numeric inputs against the loan invariants: all values
// finite, principal > 0, rate >= 0, and a term between one month and MaxTermYears.
func ValidateLoanInputs(inputs loans.LoanInputs) error {
	var errs []error

	switch {
	case !mathutil.IsFinite(inputs.Principal):
		errs = append(errs, outOfRange(FieldLoanAmount, inputs.Principal, "a finite number"))
	case inputs.Principal <= 0:
		errs = append(errs, outOfRange(FieldLoanAmount, inputs.Principal, "greater than 0"))
	}

	switch {
	case !mathutil.IsFinite(inputs.AnnualRatePercent):
		errs = append(errs, outOfRange(FieldInterestRate, inputs.AnnualRatePercent, "a finite number"))
	case inputs.AnnualRatePercent < 0:
		errs = append(errs, outOfRange(FieldInterestRate, inputs.AnnualRatePercent, "0 or greater"))
	}

	switch {
	case !mathutil.IsFinite(inputs.TermYears):
		errs = append(errs, outOfRange(FieldTermYears, inputs.TermYears, "a finite number"))
	case inputs.TermYears <= 0:
		errs = append(errs, outOfRange(FieldTermYears, inputs.TermYears, "greater than 0"))
	case inputs.TermMonths() < 1:
		errs = append(errs, outOfRange(FieldTermYears, inputs.TermYears,
			fmt.Sprintf("at least one month (%.4f years)", 1.0/constants.MonthsPerYear)))
	case inputs.TermYears > constants.MaxTermYears:
		errs = append(errs, outOfRange(FieldTermYears, inputs.TermYears,
			fmt.Sprintf("at most %d years", constants.MaxTermYears)))
	}

	return errors.Join(errs...)
}

// FieldErrors flattens an error returned by ParseLoanInputs or ValidateLoanInputs into
// a field name to message map. Errors that are not InvalidInputErrors are ignored.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	collectFieldErrors(err, fields)
	return fields
}

func collectFieldErrors(err error, fields map[string]string) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			collectFieldErrors(inner, fields)
		}
		return
	}
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		if _, exists := fields[invalid.Field]; !exists {
			fields[invalid.Field] = invalid.Reason
		}
	}
}

// ValidateBaseCurrency checks that code is one of the supported base currencies.
func ValidateBaseCurrency(code string) error {
	for _, supported := range constants.SupportedBaseCurrencies {
		if code == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported base currency %q, expected one of %s",
		code, strings.Join(constants.SupportedBaseCurrencies, ", "))
}
