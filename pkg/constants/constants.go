// Package constants provides shared constants for the loan-schedule application.
package constants

import "time"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxTermYears bounds the loan term accepted at the input boundary
	MaxTermYears = 100
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Pagination defaults mirror the schedule table of the web UI.
const (
	DefaultRowsPerPage = 10
	MaxRowsPerPage     = 500
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is prepended to environment variable overrides, e.g. LOAN_LOAN_PRINCIPAL.
	EnvPrefix = "LOAN"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateLimitRequests is the number of requests a client may make per window
	DefaultRateLimitRequests = 60

	// DefaultRateLimitWindow is the refill window of the per-client token bucket
	DefaultRateLimitWindow = time.Minute

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP server
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultServiceName identifies the service in traces
	DefaultServiceName = "loan-schedule"
)

// Exchange rate defaults
const (
	// DefaultExchangeBaseURL is the v6 endpoint of exchangerate-api.com
	DefaultExchangeBaseURL = "https://v6.exchangerate-api.com/v6"

	// DefaultBaseCurrency is the base currency used when none is configured
	DefaultBaseCurrency = "USD"

	// DefaultExchangeTimeout bounds a single upstream request
	DefaultExchangeTimeout = 10 * time.Second

	// DefaultExchangeCacheTTL is how long fetched rates are reused
	DefaultExchangeCacheTTL = time.Hour
)

// SupportedBaseCurrencies lists the base currencies offered for rate lookups.
var SupportedBaseCurrencies = []string{
	"USD",
	"INR",
	"EUR",
	"GBP",
	"JPY",
	"AUD",
	"CAD",
	"CHF",
	"CNY",
	"AED",
}
