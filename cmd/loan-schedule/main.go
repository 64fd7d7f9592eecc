package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/exchange"
	"github.com/iwvelando/loan-schedule/internal/logging"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"github.com/iwvelando/loan-schedule/pkg/pagination"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before configuration")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	principal := flag.Float64("principal", 0, "loan amount override")
	rate := flag.Float64("rate", -1, "annual interest rate override, in percent")
	years := flag.Float64("years", 0, "loan term override, in years")
	payment := flag.Float64("payment", 0, "fixed monthly payment override; the EMI is used when unset")
	strict := flag.Bool("strict", false, "fail when the payment does not cover the monthly interest")
	page := flag.Int("page", -1, "zero-based page of the schedule to print")
	rowsPerPage := flag.Int("rows-per-page", -1, "rows per page; 0 prints every row")
	showRates := flag.Bool("rates", false, "print live exchange rates for the configured base currency")
	flag.Parse()

	if err := config.LoadEnvFiles(*envFile); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load env file\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	conf, err := loadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	applyOverrides(conf, flagOverrides{
		principal:   *principal,
		rate:        *rate,
		years:       *years,
		payment:     *payment,
		strict:      *strict,
		page:        *page,
		rowsPerPage: *rowsPerPage,
	})

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *showRates {
		if err := printRates(logger, conf); err != nil {
			logger.Fatal("failed to fetch exchange rates",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	inputs, err := conf.Inputs()
	if err != nil {
		logger.Fatal("invalid loan inputs",
			zap.String("op", "main"),
			zap.Any("fields", validation.FieldErrors(err)),
			zap.Error(err),
		)
	}

	generator := loans.NewScheduleGenerator(logger, conf.Strict)
	var result loans.Result
	if conf.Loan.Payment > 0 {
		result, err = generator.Generate(inputs, conf.Loan.Payment)
	} else {
		result, err = generator.Calculate(inputs)
	}
	if err != nil {
		logger.Fatal("failed to generate amortization schedule",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	rows := result.Schedule
	if conf.Output.RowsPerPage > 0 {
		rows = pagination.Paginate(rows, conf.Output.Page, conf.Output.RowsPerPage).Items
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, result.EMI, rows)
	case constants.OutputFormatCSV:
		output.CsvFormat(os.Stdout, rows)
	}
}

// loadConfiguration reads the config file, falling back to defaults and the environment
// when the default file is absent.
func loadConfiguration(path string) (*config.Configuration, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && path == constants.DefaultConfigFile {
		return config.Defaults()
	}
	return config.LoadConfiguration(path)
}

type flagOverrides struct {
	principal   float64
	rate        float64
	years       float64
	payment     float64
	strict      bool
	page        int
	rowsPerPage int
}

// applyOverrides copies explicitly set flags over the loaded configuration. Sentinel
// defaults mark unset flags.
func applyOverrides(conf *config.Configuration, o flagOverrides) {
	if o.principal != 0 {
		conf.Loan.Principal = o.principal
	}
	if o.rate >= 0 {
		conf.Loan.InterestRate = o.rate
	}
	if o.years != 0 {
		conf.Loan.TermYears = o.years
	}
	if o.payment != 0 {
		conf.Loan.Payment = o.payment
	}
	if o.strict {
		conf.Strict = true
	}
	if o.page >= 0 {
		conf.Output.Page = o.page
	}
	if o.rowsPerPage >= 0 {
		conf.Output.RowsPerPage = o.rowsPerPage
	}
}

func printRates(logger *zap.Logger, conf *config.Configuration) error {
	base := conf.Exchange.BaseCurrency
	if err := validation.ValidateBaseCurrency(base); err != nil {
		return err
	}

	service, closeCache := exchange.NewServiceFromConfig(logger, conf.Exchange)
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn("failed to close exchange rate cache",
				zap.String("op", "main.printRates"),
				zap.Error(err),
			)
		}
	}()

	rates, err := service.Latest(context.Background(), base)
	if err != nil {
		return err
	}

	sorted := rates.Sorted()
	lines := make([]output.Rate, 0, len(sorted))
	for _, r := range sorted {
		lines = append(lines, output.Rate{Code: r.Code, Value: r.Value})
	}
	if conf.Output.RowsPerPage > 0 {
		lines = pagination.Paginate(lines, conf.Output.Page, conf.Output.RowsPerPage).Items
	}
	output.PrettyRates(os.Stdout, rates.BaseCode, lines)
	return nil
}
