package loans

import (
	"errors"

	"go.uber.org/zap"
)

// ScheduleGenerator ties the EMI calculation to schedule generation for callers at the
// application boundary and reports non-amortizing payments through its logger.
type ScheduleGenerator struct {
	logger *zap.Logger
	strict bool
}

// Result is a computed EMI together with its schedule.
type Result struct {
	Inputs   LoanInputs        `json:"inputs"`
	EMI      float64           `json:"emi"`
	Schedule []AmortizationRow `json:"schedule"`
	Summary  Summary           `json:"summary"`
}

// NewScheduleGenerator creates a generator. In strict mode non-amortizing payments fail
// with ErrNonAmortizing, otherwise they are logged and the schedule runs to term.
func NewScheduleGenerator(logger *zap.Logger, strict bool) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger, strict: strict}
}

// Strict reports whether the generator rejects non-amortizing payments.
func (g *ScheduleGenerator) Strict() bool {
	return g.strict
}

// Calculate computes the EMI for already-validated inputs and builds the schedule.
func (g *ScheduleGenerator) Calculate(inputs LoanInputs) (Result, error) {
	emi := CalculateEMI(inputs.Principal, inputs.AnnualRatePercent, inputs.TermYears)
	g.logger.Debug("computed monthly payment",
		zap.String("op", "loans.Calculate"),
		zap.Float64("principal", inputs.Principal),
		zap.Float64("annualRatePercent", inputs.AnnualRatePercent),
		zap.Float64("termYears", inputs.TermYears),
		zap.Float64("emi", emi),
	)
	return g.Generate(inputs, emi)
}

// Generate builds the schedule for inputs with a payment supplied by the caller.
func (g *ScheduleGenerator) Generate(inputs LoanInputs, payment float64) (Result, error) {
	result := Result{Inputs: inputs, EMI: payment}

	if err := CheckAmortizing(inputs.Principal, inputs.AnnualRatePercent, payment); err != nil {
		var nonAmortizing *NonAmortizingError
		if g.strict || !errors.As(err, &nonAmortizing) {
			return result, err
		}
		g.logger.Warn("payment does not cover monthly interest, balance will grow",
			zap.String("op", "loans.Generate"),
			zap.Float64("payment", nonAmortizing.Payment),
			zap.Float64("interest", nonAmortizing.InterestPayment),
		)
	}

	result.Schedule = GenerateSchedule(inputs.Principal, inputs.AnnualRatePercent, inputs.TermYears, payment)
	result.Summary = Summarize(result.Schedule)

	g.logger.Debug("generated amortization schedule",
		zap.String("op", "loans.Generate"),
		zap.Int("months", len(result.Schedule)),
		zap.Float64("totalInterest", result.Summary.TotalInterest),
	)
	return result, nil
}
