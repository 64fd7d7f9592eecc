package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/loan-schedule/internal/exchange"
	"github.com/iwvelando/loan-schedule/internal/metrics"
	"github.com/iwvelando/loan-schedule/internal/state"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"github.com/iwvelando/loan-schedule/pkg/pagination"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RatesProvider looks up conversion rates for a base currency.
type RatesProvider interface {
	Latest(ctx context.Context, base string) (exchange.Rates, error)
}

// Dependencies are the collaborators shared by every request.
type Dependencies struct {
	State        *state.State
	Rates        RatesProvider
	Tracer       trace.Tracer
	Limiter      *RateLimiter
	Strict       bool
	MaxBodySize  int64
	Version      string
	BaseCurrency string
}

type handler struct {
	logger       *zap.Logger
	state        *state.State
	rates        RatesProvider
	limiter      *RateLimiter
	strict       bool
	maxBodySize  int64
	version      string
	baseCurrency string
}

// NewHandler constructs the HTTP handler that serves the loan calculator API.
func NewHandler(logger *zap.Logger, deps Dependencies) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if deps.MaxBodySize <= 0 {
		deps.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if deps.State == nil {
		deps.State = state.New()
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer(constants.DefaultServiceName)
	}
	if deps.BaseCurrency == "" {
		deps.BaseCurrency = constants.DefaultBaseCurrency
	}

	trimmedVersion := strings.TrimSpace(deps.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:       logger,
		state:        deps.State,
		rates:        deps.Rates,
		limiter:      deps.Limiter,
		strict:       deps.Strict,
		maxBodySize:  deps.MaxBodySize,
		version:      trimmedVersion,
		baseCurrency: deps.BaseCurrency,
	}

	routes := map[string]http.HandlerFunc{
		"/api/emi":          h.handleEMI,
		"/api/schedule":     h.handleSchedule,
		"/api/calculate":    h.handleCalculate,
		"/api/reset":        h.handleReset,
		"/api/state":        h.handleState,
		"/api/theme/toggle": h.handleThemeToggle,
		"/api/rates":        h.handleRates,
		"/api/version":      h.handleVersion,
	}

	mux := http.NewServeMux()
	for route, fn := range routes {
		mux.Handle(route, instrument(route, deps.Tracer, fn))
	}
	mux.Handle("/metrics", promhttp.Handler())

	return h.rateLimit(h.limitBody(mux))
}

// rawField accepts a JSON string or number and keeps its text so parsing stays at the
// validation boundary.
type rawField string

func (f *rawField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = rawField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", trimmed)
	}
	*f = rawField(n.String())
	return nil
}

type emiRequest struct {
	LoanAmount   rawField `json:"loanAmount"`
	InterestRate rawField `json:"interestRate"`
	TermYears    rawField `json:"termYears"`
}

type emiResponse struct {
	EMI    float64          `json:"emi"`
	Inputs loans.LoanInputs `json:"inputs"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type scheduleResponse struct {
	EMI      *float64                              `json:"emi"`
	Page     pagination.Page[loans.AmortizationRow] `json:"page"`
	Summary  *loans.Summary                        `json:"summary,omitempty"`
	CSV      string                                `json:"csv,omitempty"`
	Warnings []string                              `json:"warnings,omitempty"`
}

type calculateRequest struct {
	Principal         float64  `json:"principal"`
	AnnualRatePercent float64  `json:"annualRatePercent"`
	TermYears         float64  `json:"termYears"`
	Payment           *float64 `json:"payment,omitempty"`
	Strict            *bool    `json:"strict,omitempty"`
}

type ratesResponse struct {
	BaseCode  string                         `json:"baseCode"`
	FetchedAt time.Time                      `json:"fetchedAt"`
	Page      pagination.Page[exchange.Rate] `json:"page"`
}

// handleEMI validates the submitted form, stores it and computes the monthly payment.
// A failed submission keeps the typed values and clears the EMI.
func (h *handler) handleEMI(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEMI"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req emiRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	values := state.FormValues{
		LoanAmount:   string(req.LoanAmount),
		InterestRate: string(req.InterestRate),
		TermYears:    string(req.TermYears),
	}

	inputs, err := validation.ParseLoanInputs(values.LoanAmount, values.InterestRate, values.TermYears)
	if err != nil {
		h.state.Submit(values, nil)
		metrics.Calculations.WithLabelValues("emi", "invalid").Inc()
		h.respondValidation(w, err, op)
		return
	}

	emi := loans.CalculateEMI(inputs.Principal, inputs.AnnualRatePercent, inputs.TermYears)
	h.state.Submit(values, &emi)
	metrics.Calculations.WithLabelValues("emi", "success").Inc()

	h.logger.Debug("computed EMI",
		zap.String("op", op),
		zap.Float64("emi", emi),
	)
	h.writeJSON(w, http.StatusOK, emiResponse{EMI: emi, Inputs: inputs})
}

// handleSchedule pages through the schedule for the stored form values and EMI. With no
// EMI the page is empty.
func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	page, rowsPerPage, ok := h.pageParams(w, r, op)
	if !ok {
		return
	}
	strict := h.strict || coerceBool(r.URL.Query().Get("strict"))

	snapshot := h.state.Snapshot()
	if snapshot.EMI == nil {
		h.writeJSON(w, http.StatusOK, scheduleResponse{
			Page: pagination.Paginate([]loans.AmortizationRow{}, page, rowsPerPage),
		})
		return
	}

	values := snapshot.FormValues
	inputs, err := validation.ParseLoanInputs(values.LoanAmount, values.InterestRate, values.TermYears)
	if err != nil {
		h.respondValidation(w, err, op)
		return
	}

	result, err := loans.NewScheduleGenerator(h.logger, strict).Generate(inputs, *snapshot.EMI)
	if err != nil {
		h.respondGeneration(w, err, "schedule", op)
		return
	}
	metrics.Calculations.WithLabelValues("schedule", "success").Inc()

	summary := result.Summary
	h.writeJSON(w, http.StatusOK, scheduleResponse{
		EMI:      snapshot.EMI,
		Page:     pagination.Paginate(result.Schedule, page, rowsPerPage),
		Summary:  &summary,
		CSV:      output.CsvString(result.Schedule),
		Warnings: amortizingWarnings(inputs, *snapshot.EMI),
	})
}

// handleCalculate computes an EMI and full schedule without touching shared state.
func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req calculateRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	inputs := loans.LoanInputs{
		Principal:         req.Principal,
		AnnualRatePercent: req.AnnualRatePercent,
		TermYears:         req.TermYears,
	}
	if err := validation.ValidateLoanInputs(inputs); err != nil {
		metrics.Calculations.WithLabelValues("calculate", "invalid").Inc()
		h.respondValidation(w, err, op)
		return
	}

	strict := h.strict
	if req.Strict != nil {
		strict = *req.Strict
	}
	generator := loans.NewScheduleGenerator(h.logger, strict)

	var (
		result loans.Result
		err    error
	)
	if req.Payment != nil {
		result, err = generator.Generate(inputs, *req.Payment)
	} else {
		result, err = generator.Calculate(inputs)
	}
	if err != nil {
		h.respondGeneration(w, err, "calculate", op)
		return
	}
	metrics.Calculations.WithLabelValues("calculate", "success").Inc()

	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.state.Reset()
	h.writeJSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *handler) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	dark := h.state.ToggleDarkMode()
	h.writeJSON(w, http.StatusOK, map[string]bool{"darkMode": dark})
}

func (h *handler) handleRates(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRates"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	base := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("base")))
	if base == "" {
		base = h.baseCurrency
	}
	if err := validation.ValidateBaseCurrency(base); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	page, rowsPerPage, ok := h.pageParams(w, r, op)
	if !ok {
		return
	}

	if h.rates == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "exchange rates are not configured", op)
		return
	}

	rates, err := h.rates.Latest(r.Context(), base)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, exchange.ErrMissingAPIKey) {
			status = http.StatusServiceUnavailable
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, ratesResponse{
		BaseCode:  rates.BaseCode,
		FetchedAt: rates.FetchedAt.UTC(),
		Page:      pagination.Paginate(rates.Sorted(), page, rowsPerPage),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), op)
		return false
	}
	return true
}

func (h *handler) pageParams(w http.ResponseWriter, r *http.Request, op string) (int, int, bool) {
	query := r.URL.Query()
	page, err := intParam(query.Get("page"), 0)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid page: %v", err), op)
		return 0, 0, false
	}
	rowsPerPage, err := intParam(query.Get("rowsPerPage"), constants.DefaultRowsPerPage)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid rowsPerPage: %v", err), op)
		return 0, 0, false
	}
	return page, rowsPerPage, true
}

func intParam(value string, fallback int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	return strconv.Atoi(trimmed)
}

func amortizingWarnings(inputs loans.LoanInputs, payment float64) []string {
	var nonAmortizing *loans.NonAmortizingError
	err := loans.CheckAmortizing(inputs.Principal, inputs.AnnualRatePercent, payment)
	if errors.As(err, &nonAmortizing) {
		return []string{nonAmortizing.Error()}
	}
	return nil
}

func (h *handler) respondValidation(w http.ResponseWriter, err error, op string) {
	h.logger.Info("rejected loan inputs",
		zap.String("op", op),
		zap.Error(err),
	)
	h.writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:  "invalid loan inputs",
		Fields: validation.FieldErrors(err),
	})
}

func (h *handler) respondGeneration(w http.ResponseWriter, err error, operation, op string) {
	if errors.Is(err, loans.ErrNonAmortizing) {
		metrics.Calculations.WithLabelValues(operation, "non_amortizing").Inc()
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	metrics.Calculations.WithLabelValues(operation, "error").Inc()
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("loan request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case json.Number:
		if parsed, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return parsed != 0
		}
	}
	return false
}
