// Package config defines the data structures related to configuration and
// includes functions for loading it from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-schedule.
type Configuration struct {
	Loan     LoanConfig     `mapstructure:"loan" yaml:"loan"`
	Strict   bool           `mapstructure:"strict" yaml:"strict"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging,omitempty"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output,omitempty"`
	Exchange ExchangeConfig `mapstructure:"exchange" yaml:"exchange,omitempty"`
}

// LoanConfig describes the loan to amortize. A zero Payment means the EMI is computed.
type LoanConfig struct {
	Principal    float64 `mapstructure:"principal" yaml:"principal"`
	InterestRate float64 `mapstructure:"interestRate" yaml:"interestRate"` // annual percent
	TermYears    float64 `mapstructure:"termYears" yaml:"termYears"`
	Payment      float64 `mapstructure:"payment" yaml:"payment,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format      string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv
	Page        int    `mapstructure:"page" yaml:"page,omitempty"`
	RowsPerPage int    `mapstructure:"rowsPerPage" yaml:"rowsPerPage,omitempty"` // 0 prints every row
}

// ExchangeConfig configures the live exchange rate lookup.
type ExchangeConfig struct {
	BaseURL       string        `mapstructure:"baseURL" yaml:"baseURL,omitempty"`
	APIKey        string        `mapstructure:"apiKey" yaml:"apiKey,omitempty"`
	BaseCurrency  string        `mapstructure:"baseCurrency" yaml:"baseCurrency,omitempty"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
	CacheTTL      time.Duration `mapstructure:"cacheTTL" yaml:"cacheTTL,omitempty"`
	RedisAddress  string        `mapstructure:"redisAddress" yaml:"redisAddress,omitempty"`
	RedisPassword string        `mapstructure:"redisPassword" yaml:"redisPassword,omitempty"`
	RedisDB       int           `mapstructure:"redisDB" yaml:"redisDB,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to apply during Unmarshal.
	v.SetDefault("loan.principal", 0.0)
	v.SetDefault("loan.interestRate", 0.0)
	v.SetDefault("loan.termYears", 0.0)
	v.SetDefault("loan.payment", 0.0)
	v.SetDefault("strict", false)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	v.SetDefault("output.page", 0)
	v.SetDefault("output.rowsPerPage", 0)
	v.SetDefault("exchange.baseURL", constants.DefaultExchangeBaseURL)
	v.SetDefault("exchange.apiKey", "")
	v.SetDefault("exchange.baseCurrency", constants.DefaultBaseCurrency)
	v.SetDefault("exchange.timeout", constants.DefaultExchangeTimeout)
	v.SetDefault("exchange.cacheTTL", constants.DefaultExchangeCacheTTL)
	v.SetDefault("exchange.redisAddress", "")
	v.SetDefault("exchange.redisPassword", "")
	v.SetDefault("exchange.redisDB", 0)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with LOAN_ override file values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// Defaults returns the configuration built from defaults and the environment only.
func Defaults() (*Configuration, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// LoadEnvFiles loads KEY=value pairs from the given dotenv files into the process
// environment without overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}
