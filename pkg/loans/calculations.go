// Package loans computes fixed-rate loan payments and their amortization schedules.
//
// The functions in this package are pure: they perform no validation, no I/O and
// hold no state, so they are safe to call concurrently. Input validation belongs to
// the caller (see package validation).
package loans

import (
	"math"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
)

// LoanInputs holds the parameters of a fixed-rate, fully-amortizing loan.
type LoanInputs struct {
	Principal         float64 `json:"principal" yaml:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent" yaml:"annualRatePercent"`
	TermYears         float64 `json:"termYears" yaml:"termYears"`
}

// TermMonths returns the number of whole monthly payments in the term.
func (in LoanInputs) TermMonths() int {
	return TermMonths(in.TermYears)
}

// TermMonths returns the number of whole monthly payments in a term of the given years.
// A fractional trailing month is dropped.
func TermMonths(termYears float64) int {
	n := math.Floor(termYears * constants.MonthsPerYear)
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 1 {
		return 0
	}
	return int(n)
}

// CalculateEMI calculates the fixed monthly payment of a loan using the annuity formula.
func CalculateEMI(principal, annualRatePercent, termYears float64) float64 {
	monthlyRate := mathutil.MonthlyRate(annualRatePercent)
	totalPayments := termYears * constants.MonthsPerYear

	if monthlyRate == 0 {
		// Straight-line repayment; the annuity formula is 0/0 here.
		return principal / totalPayments
	}

	power := math.Pow(1+monthlyRate, totalPayments)
	return principal * monthlyRate * power / (power - 1)
}

// CalculateInterestPayment calculates the interest accrued on a balance over one month.
func CalculateInterestPayment(remainingBalance, annualRatePercent float64) float64 {
	return remainingBalance * mathutil.MonthlyRate(annualRatePercent)
}
