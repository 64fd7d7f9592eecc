// Package exchange fetches live currency conversion rates from exchangerate-api.com.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
)

// ErrUnexpectedStatus is wrapped by StatusError.
var ErrUnexpectedStatus = errors.New("error while fetching exchange rates")

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("exchange rate API key is not configured")

// StatusError reports a non-200 upstream response.
type StatusError struct {
	StatusCode int
	ErrorType  string
}

func (e *StatusError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("%s: status %d (%s)", ErrUnexpectedStatus, e.StatusCode, e.ErrorType)
	}
	return fmt.Sprintf("%s: status %d", ErrUnexpectedStatus, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Rates holds the conversion rates for one base currency.
type Rates struct {
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
	FetchedAt       time.Time          `json:"fetched_at"`
}

// Rate is a single currency and its value against the base.
type Rate struct {
	Code  string  `json:"code"`
	Value float64 `json:"value"`
}

// Sorted returns the conversion rates ordered by currency code.
func (r Rates) Sorted() []Rate {
	rates := make([]Rate, 0, len(r.ConversionRates))
	for code, value := range r.ConversionRates {
		rates = append(rates, Rate{Code: code, Value: value})
	}
	sort.Slice(rates, func(i, j int) bool {
		return rates[i].Code < rates[j].Code
	})
	return rates
}

type latestResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// Fetcher retrieves the latest rates for a base currency.
type Fetcher interface {
	Latest(ctx context.Context, base string) (Rates, error)
}

// Client talks to the v6 API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient builds a client. An empty baseURL uses the public endpoint and a
// non-positive timeout uses the default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultExchangeBaseURL
	}
	if timeout <= 0 {
		timeout = constants.DefaultExchangeTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Latest performs GET {baseURL}/{apiKey}/latest/{base}.
func (c *Client) Latest(ctx context.Context, base string) (Rates, error) {
	if c.apiKey == "" {
		return Rates{}, ErrMissingAPIKey
	}

	endpoint := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Rates{}, fmt.Errorf("failed to build exchange rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Rates{}, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Rates{}, fmt.Errorf("failed to read exchange rate response: %w", err)
	}

	var payload latestResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode != http.StatusOK {
		return Rates{}, &StatusError{StatusCode: resp.StatusCode, ErrorType: payload.ErrorType}
	}
	if decodeErr != nil {
		return Rates{}, fmt.Errorf("failed to decode exchange rate response: %w", decodeErr)
	}
	if payload.Result == "error" {
		return Rates{}, &StatusError{StatusCode: resp.StatusCode, ErrorType: payload.ErrorType}
	}

	return Rates{
		BaseCode:        payload.BaseCode,
		ConversionRates: payload.ConversionRates,
		FetchedAt:       c.now().UTC(),
	}, nil
}
