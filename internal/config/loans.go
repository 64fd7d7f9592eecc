package config

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/validation"
)

// Inputs returns the validated loan inputs of the configuration.
func (conf *Configuration) Inputs() (loans.LoanInputs, error) {
	inputs := loans.LoanInputs{
		Principal:         conf.Loan.Principal,
		AnnualRatePercent: conf.Loan.InterestRate,
		TermYears:         conf.Loan.TermYears,
	}
	if err := validation.ValidateLoanInputs(inputs); err != nil {
		return loans.LoanInputs{}, fmt.Errorf("invalid loan configuration: %w", err)
	}
	return inputs, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if conf.Loan.Payment < 0 {
		warnings = append(warnings, fmt.Sprintf("Loan payment %.2f is negative", conf.Loan.Payment))
	}
	if conf.Loan.Payment > 0 && !conf.Strict {
		err := loans.CheckAmortizing(conf.Loan.Principal, conf.Loan.InterestRate, conf.Loan.Payment)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Loan payment %.2f does not cover the first month's interest; the balance will grow",
				conf.Loan.Payment))
		}
	}

	if conf.Exchange.BaseCurrency != "" {
		if err := validation.ValidateBaseCurrency(conf.Exchange.BaseCurrency); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	if conf.Output.RowsPerPage < 0 {
		warnings = append(warnings, fmt.Sprintf("Output rowsPerPage %d is negative, printing every row", conf.Output.RowsPerPage))
	}

	return warnings
}
