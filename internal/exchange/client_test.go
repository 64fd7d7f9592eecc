package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleResponse = `{
  "result": "success",
  "base_code": "USD",
  "conversion_rates": {"USD": 1, "INR": 83.12, "EUR": 0.9123}
}`

func TestClientLatest(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "secret", time.Second)
	fixed := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	rates, err := client.Latest(context.Background(), "USD")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}

	if requestedPath != "/secret/latest/USD" {
		t.Errorf("requested path = %s, expected /secret/latest/USD", requestedPath)
	}
	if rates.BaseCode != "USD" {
		t.Errorf("BaseCode = %s, expected USD", rates.BaseCode)
	}
	if rates.ConversionRates["INR"] != 83.12 {
		t.Errorf("INR rate = %v, expected 83.12", rates.ConversionRates["INR"])
	}
	if !rates.FetchedAt.Equal(fixed) {
		t.Errorf("FetchedAt = %v, expected %v", rates.FetchedAt, fixed)
	}

	sorted := rates.Sorted()
	if len(sorted) != 3 || sorted[0].Code != "EUR" || sorted[2].Code != "USD" {
		t.Errorf("Sorted() = %+v, expected EUR, INR, USD", sorted)
	}
}

func TestClientLatestErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		expectType string
	}{
		{
			name:       "Upstream error status",
			status:     http.StatusForbidden,
			body:       `{"result":"error","error-type":"invalid-key"}`,
			expectType: "invalid-key",
		},
		{
			name:       "Error result with 200",
			status:     http.StatusOK,
			body:       `{"result":"error","error-type":"unsupported-code"}`,
			expectType: "unsupported-code",
		},
		{
			name:   "Server failure without body",
			status: http.StatusInternalServerError,
			body:   ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, "secret", time.Second).Latest(context.Background(), "USD")
			if !errors.Is(err, ErrUnexpectedStatus) {
				t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected *StatusError, got %T", err)
			}
			if statusErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, expected %d", statusErr.StatusCode, tt.status)
			}
			if statusErr.ErrorType != tt.expectType {
				t.Errorf("ErrorType = %q, expected %q", statusErr.ErrorType, tt.expectType)
			}
		})
	}
}

func TestClientLatestMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "secret", time.Second).Latest(context.Background(), "USD")
	if err == nil || errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestClientLatestMissingKey(t *testing.T) {
	_, err := NewClient("", "", 0).Latest(context.Background(), "USD")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestClientLatestHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := NewClient(server.URL, "secret", 5*time.Second).Latest(ctx, "USD"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
