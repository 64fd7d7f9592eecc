package loans

import (
	"errors"
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/mathutil"
)

// ErrNonAmortizing indicates a payment that does not cover the first month's interest.
var ErrNonAmortizing = errors.New("payment does not cover monthly interest")

// NonAmortizingError carries the figures behind an ErrNonAmortizing failure.
type NonAmortizingError struct {
	Payment         float64
	InterestPayment float64
}

func (e *NonAmortizingError) Error() string {
	return fmt.Sprintf("%s: payment %.2f <= first month interest %.2f",
		ErrNonAmortizing, e.Payment, e.InterestPayment)
}

func (e *NonAmortizingError) Unwrap() error {
	return ErrNonAmortizing
}

// AmortizationRow is one month of an amortization schedule.
type AmortizationRow struct {
	Month            int     `json:"month"`
	Payment          float64 `json:"payment"`
	PrincipalPaid    float64 `json:"principalPaid"`
	InterestPaid     float64 `json:"interestPaid"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// GenerateSchedule expands a loan and its fixed payment into a month-by-month ledger.
//
// The payment is taken as given and never recomputed. A payment that does not cover
// the interest yields negative PrincipalPaid and a growing balance; the schedule still
// runs for the full term. A balance that would go negative is clamped to zero without
// adjusting that month's PrincipalPaid.
func GenerateSchedule(principal, annualRatePercent, termYears, payment float64) []AmortizationRow {
	months := TermMonths(termYears)
	schedule := make([]AmortizationRow, 0, months)

	remainingBalance := principal
	for month := 1; month <= months; month++ {
		interestPaid := CalculateInterestPayment(remainingBalance, annualRatePercent)
		principalPaid := payment - interestPaid
		remainingBalance -= principalPaid

		if remainingBalance < 0 {
			remainingBalance = 0
		}

		schedule = append(schedule, AmortizationRow{
			Month:            month,
			Payment:          payment,
			PrincipalPaid:    principalPaid,
			InterestPaid:     interestPaid,
			RemainingBalance: remainingBalance,
		})
	}

	return schedule
}

// CheckAmortizing reports whether payment reduces the principal in the first month.
// It returns a *NonAmortizingError when it does not.
func CheckAmortizing(principal, annualRatePercent, payment float64) error {
	if principal <= 0 {
		return nil
	}
	interest := CalculateInterestPayment(principal, annualRatePercent)
	if payment <= interest {
		return &NonAmortizingError{Payment: payment, InterestPayment: interest}
	}
	return nil
}

// GenerateScheduleStrict is GenerateSchedule that refuses non-amortizing payments.
func GenerateScheduleStrict(principal, annualRatePercent, termYears, payment float64) ([]AmortizationRow, error) {
	if err := CheckAmortizing(principal, annualRatePercent, payment); err != nil {
		return nil, err
	}
	return GenerateSchedule(principal, annualRatePercent, termYears, payment), nil
}

// Summary aggregates a schedule.
type Summary struct {
	Months         int     `json:"months"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPaid      float64 `json:"totalPaid"`
	TotalPrincipal float64 `json:"totalPrincipal"`
	TotalInterest  float64 `json:"totalInterest"`
	FinalBalance   float64 `json:"finalBalance"`
}

// Summarize totals the payments of a schedule. Totals are rounded to cents.
func Summarize(schedule []AmortizationRow) Summary {
	var summary Summary
	if len(schedule) == 0 {
		return summary
	}

	for _, row := range schedule {
		summary.TotalPaid += row.Payment
		summary.TotalPrincipal += row.PrincipalPaid
		summary.TotalInterest += row.InterestPaid
	}

	last := schedule[len(schedule)-1]
	summary.Months = len(schedule)
	summary.MonthlyPayment = mathutil.Round(schedule[0].Payment)
	summary.TotalPaid = mathutil.Round(summary.TotalPaid)
	summary.TotalPrincipal = mathutil.Round(summary.TotalPrincipal)
	summary.TotalInterest = mathutil.Round(summary.TotalInterest)
	summary.FinalBalance = mathutil.Round(last.RemainingBalance)
	return summary
}
