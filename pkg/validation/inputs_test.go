package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/loan-schedule/pkg/loans"
)

func TestParseLoanInputs(t *testing.T) {
	tests := []struct {
		name         string
		loanAmount   string
		interestRate string
		termYears    string
		expected     loans.LoanInputs
		expectFields []string
	}{
		{
			name:         "Valid inputs",
			loanAmount:   "100000",
			interestRate: "12",
			termYears:    "1",
			expected:     loans.LoanInputs{Principal: 100000, AnnualRatePercent: 12, TermYears: 1},
		},
		{
			name:         "Surrounding whitespace",
			loanAmount:   " 2500.50 ",
			interestRate: "0",
			termYears:    "1.5\n",
			expected:     loans.LoanInputs{Principal: 2500.50, AnnualRatePercent: 0, TermYears: 1.5},
		},
		{
			name:         "Non-numeric amount",
			loanAmount:   "abc",
			interestRate: "5",
			termYears:    "30",
			expectFields: []string{FieldLoanAmount},
		},
		{
			name:         "Every field empty",
			loanAmount:   "",
			interestRate: "",
			termYears:    "",
			expectFields: []string{FieldLoanAmount, FieldInterestRate, FieldTermYears},
		},
		{
			name:         "Zero principal",
			loanAmount:   "0",
			interestRate: "5",
			termYears:    "30",
			expectFields: []string{FieldLoanAmount},
		},
		{
			name:         "Negative rate",
			loanAmount:   "1000",
			interestRate: "-1",
			termYears:    "30",
			expectFields: []string{FieldInterestRate},
		},
		{
			name:         "Term shorter than a month",
			loanAmount:   "1000",
			interestRate: "5",
			termYears:    "0.05",
			expectFields: []string{FieldTermYears},
		},
		{
			name:         "Infinite and NaN literals",
			loanAmount:   "Inf",
			interestRate: "NaN",
			termYears:    "-2",
			expectFields: []string{FieldLoanAmount, FieldInterestRate, FieldTermYears},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs, err := ParseLoanInputs(tt.loanAmount, tt.interestRate, tt.termYears)

			if len(tt.expectFields) == 0 {
				if err != nil {
					t.Fatalf("ParseLoanInputs() unexpected error = %v", err)
				}
				if inputs != tt.expected {
					t.Errorf("ParseLoanInputs() = %+v, expected %+v", inputs, tt.expected)
				}
				return
			}

			if err == nil {
				t.Fatal("ParseLoanInputs() expected error but got none")
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected error to match ErrInvalidInput, got %v", err)
			}
			fields := FieldErrors(err)
			if len(fields) != len(tt.expectFields) {
				t.Errorf("expected %d field errors, got %d: %v", len(tt.expectFields), len(fields), fields)
			}
			for _, field := range tt.expectFields {
				if fields[field] == "" {
					t.Errorf("expected error for field %s, got %v", field, fields)
				}
			}
		})
	}
}

func TestParseLoanInputsNaNMessage(t *testing.T) {
	_, err := ParseLoanInputs("abc", "x", "1")
	fields := FieldErrors(err)

	expected := "amount must be a `number` type, but the final value was: `NaN` (cast from the value `\"abc\"`)."
	if fields[FieldLoanAmount] != expected {
		t.Errorf("amount message = %q, expected %q", fields[FieldLoanAmount], expected)
	}
	if !strings.HasPrefix(fields[FieldInterestRate], "rate must be a `number` type") {
		t.Errorf("rate message = %q", fields[FieldInterestRate])
	}

	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidInputError, got %T", err)
	}
	if invalid.Field != FieldLoanAmount || invalid.Value != "abc" {
		t.Errorf("first error = %+v", invalid)
	}
}

func TestValidateLoanInputs(t *testing.T) {
	tests := []struct {
		name      string
		inputs    loans.LoanInputs
		expectErr bool
	}{
		{"Valid", loans.LoanInputs{Principal: 1, AnnualRatePercent: 0, TermYears: 1}, false},
		{"One month", loans.LoanInputs{Principal: 1, AnnualRatePercent: 3, TermYears: 1.0 / 12}, false},
		{"Negative principal", loans.LoanInputs{Principal: -1, AnnualRatePercent: 3, TermYears: 1}, true},
		{"NaN principal", loans.LoanInputs{Principal: math.NaN(), AnnualRatePercent: 3, TermYears: 1}, true},
		{"Infinite rate", loans.LoanInputs{Principal: 1, AnnualRatePercent: math.Inf(1), TermYears: 1}, true},
		{"Zero term", loans.LoanInputs{Principal: 1, AnnualRatePercent: 3, TermYears: 0}, true},
		{"Maximum term", loans.LoanInputs{Principal: 1, AnnualRatePercent: 3, TermYears: 100}, false},
		{"Term above maximum", loans.LoanInputs{Principal: 1, AnnualRatePercent: 3, TermYears: 100.5}, true},
		{"Huge finite term", loans.LoanInputs{Principal: 1, AnnualRatePercent: 3, TermYears: 1e15}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLoanInputs(tt.inputs)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateLoanInputs(%+v) expected error but got none", tt.inputs)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateLoanInputs(%+v) unexpected error = %v", tt.inputs, err)
			}
		})
	}
}

func TestFieldErrorsIgnoresForeignErrors(t *testing.T) {
	if fields := FieldErrors(nil); len(fields) != 0 {
		t.Errorf("expected no fields for nil, got %v", fields)
	}
	if fields := FieldErrors(errors.New("boom")); len(fields) != 0 {
		t.Errorf("expected no fields for plain error, got %v", fields)
	}
}

func TestValidateBaseCurrency(t *testing.T) {
	for _, code := range []string{"USD", "INR", "AED"} {
		if err := ValidateBaseCurrency(code); err != nil {
			t.Errorf("ValidateBaseCurrency(%s) unexpected error = %v", code, err)
		}
	}
	for _, code := range []string{"", "usd", "BTC"} {
		if err := ValidateBaseCurrency(code); err == nil {
			t.Errorf("ValidateBaseCurrency(%q) expected error but got none", code)
		}
	}
}

func TestValidateLoanInputsMaxTermMessage(t *testing.T) {
	err := ValidateLoanInputs(loans.LoanInputs{Principal: 100000, AnnualRatePercent: 5, TermYears: 1e7})
	fields := FieldErrors(err)

	expected := "terms (years) must be at most 100 years"
	if fields[FieldTermYears] != expected {
		t.Fatalf("termYears message = %q, expected %q", fields[FieldTermYears], expected)
	}
	if len(fields) != 1 {
		t.Fatalf("expected only termYears to fail, got %v", fields)
	}
}
