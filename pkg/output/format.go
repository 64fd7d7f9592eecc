// Package output provides utilities for formatting and displaying amortization schedules
// and exchange rates.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/format"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Rate is one currency conversion line.
type Rate struct {
	Code  string
	Value float64
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, emi float64, rows []loans.AmortizationRow) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "--- Monthly EMI: $%.2f ---\n", emi)
	_, _ = fmt.Fprintf(w, "Month | Payment      | Principal    | Interest     | Balance\n")
	_, _ = fmt.Fprintf(w, "_____ | ____________ | ____________ | ____________ | ____________\n")
	for _, row := range rows {
		_, _ = p.Fprintf(w, "%5d | $%11.2f | $%11.2f | $%11.2f | $%11.2f\n",
			row.Month, row.Payment, row.PrincipalPaid, row.InterestPaid, row.RemainingBalance)
	}

	summary := loans.Summarize(rows)
	_, _ = fmt.Fprintf(w, "\nMonths: %d | Total paid: %s | Total interest: %s | Final balance: %s\n",
		summary.Months,
		format.Currency(summary.TotalPaid),
		format.Currency(summary.TotalInterest),
		format.Currency(summary.FinalBalance),
	)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, rows []loans.AmortizationRow) {
	_, _ = io.WriteString(w, CsvString(rows))
}

// CsvString renders the schedule as CSV text.
func CsvString(rows []loans.AmortizationRow) string {
	var builder strings.Builder
	builder.WriteString(`"month","payment","principal","interest","balance"`)
	builder.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(&builder, `"%d","%.2f","%.2f","%.2f","%.2f"`,
			row.Month, row.Payment, row.PrincipalPaid, row.InterestPaid, row.RemainingBalance)
		builder.WriteString("\n")
	}
	return builder.String()
}

// PrettyRates outputs conversion rates for a base currency, in the order given.
func PrettyRates(w io.Writer, baseCode string, rates []Rate) {
	_, _ = fmt.Fprintf(w, "--- Exchange rates for %s ---\n", baseCode)
	_, _ = fmt.Fprintf(w, "Currency | Rate\n")
	_, _ = fmt.Fprintf(w, "________ | ____\n")
	for _, rate := range rates {
		_, _ = fmt.Fprintf(w, "%-8s | %s\n", rate.Code, format.Rate(rate.Value))
	}
}
