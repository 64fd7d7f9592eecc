package integration

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"github.com/iwvelando/loan-schedule/pkg/pagination"
	"github.com/iwvelando/loan-schedule/pkg/testutil"
	"go.uber.org/zap"
)

func loadResult(t *testing.T) (*config.Configuration, loans.Result) {
	t.Helper()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	inputs, err := conf.Inputs()
	if err != nil {
		t.Fatalf("Inputs() error = %v", err)
	}

	result, err := loans.NewScheduleGenerator(zap.NewNop(), conf.Strict).Calculate(inputs)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	return conf, result
}

// TestMainIntegrationBaseline runs the configuration through the same steps as main()
// and checks the known schedule for 100,000 at 12% over one year.
func TestMainIntegrationBaseline(t *testing.T) {
	conf, result := loadResult(t)

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no configuration warnings, got %v", warnings)
	}

	if !testutil.AlmostEqual(result.EMI, 8884.8789, 0.0001) {
		t.Errorf("expected EMI 8884.8789, got %.4f", result.EMI)
	}
	if len(result.Schedule) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(result.Schedule))
	}

	baseline := []struct {
		month     int
		principal float64
		interest  float64
		balance   float64
	}{
		{1, 7884.88, 1000.00, 92115.12},
		{2, 7963.73, 921.15, 84151.39},
		{12, 8796.91, 87.97, 0},
	}
	for _, expected := range baseline {
		row := testutil.FindRow(result.Schedule, expected.month)
		if row == nil {
			t.Errorf("missing month %d", expected.month)
			continue
		}
		if !testutil.AlmostEqual(row.PrincipalPaid, expected.principal, 0.01) {
			t.Errorf("month %d: expected principal %.2f, got %.4f", expected.month, expected.principal, row.PrincipalPaid)
		}
		if !testutil.AlmostEqual(row.InterestPaid, expected.interest, 0.01) {
			t.Errorf("month %d: expected interest %.2f, got %.4f", expected.month, expected.interest, row.InterestPaid)
		}
		if !testutil.AlmostEqual(row.RemainingBalance, expected.balance, 0.01) {
			t.Errorf("month %d: expected balance %.2f, got %.4f", expected.month, expected.balance, row.RemainingBalance)
		}
	}

	if !testutil.AlmostEqual(result.Summary.TotalPaid, 106618.55, 0.01) {
		t.Errorf("expected total paid 106618.55, got %.2f", result.Summary.TotalPaid)
	}
	if !testutil.AlmostEqual(result.Summary.TotalInterest, 6618.55, 0.01) {
		t.Errorf("expected total interest 6618.55, got %.2f", result.Summary.TotalInterest)
	}
}

// TestCSVOutputFormat checks the CSV rendering of the baseline schedule.
func TestCSVOutputFormat(t *testing.T) {
	_, result := loadResult(t)

	var buf bytes.Buffer
	output.CsvFormat(&buf, result.Schedule)

	scanner := bufio.NewScanner(&buf)
	if !scanner.Scan() {
		t.Fatalf("Could not read CSV header")
	}
	if header := scanner.Text(); header != `"month","payment","principal","interest","balance"` {
		t.Errorf("unexpected CSV header %s", header)
	}

	lineCount := 0
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Split(line, ",")
		if len(parts) != 5 {
			t.Errorf("CSV line should have 5 parts, got %d: %s", len(parts), line)
		}
		for _, part := range parts {
			if !strings.HasPrefix(part, `"`) || !strings.HasSuffix(part, `"`) {
				t.Errorf("CSV field should be quoted: %s", part)
			}
		}
		lineCount++
	}
	if err := scanner.Err(); err != nil {
		t.Errorf("Error reading CSV: %v", err)
	}
	if lineCount != 12 {
		t.Errorf("expected 12 CSV rows, got %d", lineCount)
	}
}

// TestPrettyOutputFormat checks the human-readable table and its footer.
func TestPrettyOutputFormat(t *testing.T) {
	_, result := loadResult(t)

	var buf bytes.Buffer
	output.PrettyFormat(&buf, result.EMI, result.Schedule)
	text := buf.String()

	for _, expected := range []string{
		"--- Monthly EMI: $8,884.88 ---",
		"Month | Payment",
		"Months: 12",
		"Total paid: $106,618.55",
		"Total interest: $6,618.55",
		"Final balance: $0.00",
	} {
		if !strings.Contains(text, expected) {
			t.Errorf("pretty output missing %q:\n%s", expected, text)
		}
	}
}

// TestPaginatedOutput mirrors the CLI's -page and -rows-per-page flags.
func TestPaginatedOutput(t *testing.T) {
	_, result := loadResult(t)

	page := pagination.Paginate(result.Schedule, 1, 5)
	if page.TotalPages != 3 || len(page.Items) != 5 || page.Items[0].Month != 6 {
		t.Fatalf("unexpected page %+v", page)
	}

	var buf bytes.Buffer
	output.CsvFormat(&buf, page.Items)
	if lines := strings.Count(buf.String(), "\n"); lines != 6 {
		t.Errorf("expected header plus 5 rows, got %d lines", lines)
	}
}

// TestConfigurationVariations loads inline configurations and checks their schedules.
func TestConfigurationVariations(t *testing.T) {
	tests := []struct {
		name         string
		yaml         string
		expectedEMI  float64
		expectedRows int
		wantErr      bool
		growing      bool
		residual     bool
	}{
		{
			name:         "Thirty year mortgage",
			yaml:         "loan:\n  principal: 240000\n  interestRate: 6\n  termYears: 30\n",
			expectedEMI:  1438.92,
			expectedRows: 360,
		},
		{
			name:         "Zero interest",
			yaml:         "loan:\n  principal: 12000\n  interestRate: 0\n  termYears: 1\n",
			expectedEMI:  1000,
			expectedRows: 12,
		},
		{
			name:         "Fractional term truncates to whole months",
			yaml:         "loan:\n  principal: 10000\n  interestRate: 18\n  termYears: 2.55\n",
			expectedRows: 30,
			residual:     true,
		},
		{
			name:         "Lenient fixed payment below interest",
			yaml:         "loan:\n  principal: 100000\n  interestRate: 12\n  termYears: 1\n  payment: 500\n",
			expectedEMI:  500,
			expectedRows: 12,
			growing:      true,
		},
		{
			name:    "Strict fixed payment below interest",
			yaml:    "strict: true\nloan:\n  principal: 100000\n  interestRate: 12\n  termYears: 1\n  payment: 500\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := config.LoadConfigurationFromReader(strings.NewReader(tt.yaml))
			if err != nil {
				t.Fatalf("LoadConfigurationFromReader() error = %v", err)
			}
			inputs, err := conf.Inputs()
			if err != nil {
				t.Fatalf("Inputs() error = %v", err)
			}

			generator := loans.NewScheduleGenerator(zap.NewNop(), conf.Strict)
			var result loans.Result
			if conf.Loan.Payment > 0 {
				result, err = generator.Generate(inputs, conf.Loan.Payment)
			} else {
				result, err = generator.Calculate(inputs)
			}
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.expectedEMI != 0 && !testutil.AlmostEqual(result.EMI, tt.expectedEMI, 0.01) {
				t.Errorf("expected EMI %.2f, got %.4f", tt.expectedEMI, result.EMI)
			}
			if len(result.Schedule) != tt.expectedRows {
				t.Errorf("expected %d rows, got %d", tt.expectedRows, len(result.Schedule))
			}
			final := result.Schedule[len(result.Schedule)-1].RemainingBalance
			if tt.growing && final <= inputs.Principal {
				t.Errorf("expected balance to grow past %.2f, got %.2f", inputs.Principal, final)
			}
			if tt.residual && final <= 0 {
				t.Errorf("expected a residual balance after the truncated term, got %.4f", final)
			}
			if !tt.growing && !tt.residual && !testutil.AlmostEqual(final, 0, 0.01) {
				t.Errorf("expected schedule to amortize, final balance %.4f", final)
			}
		})
	}
}

// TestEnvironmentOverride checks LOAN_ prefixed variables take precedence over the file.
func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("LOAN_LOAN_PRINCIPAL", "50000")

	_, result := loadResult(t)
	if result.Inputs.Principal != 50000 {
		t.Fatalf("expected principal override 50000, got %.2f", result.Inputs.Principal)
	}
	if !testutil.AlmostEqual(result.EMI, 4442.44, 0.01) {
		t.Errorf("expected EMI 4442.44, got %.4f", result.EMI)
	}
}
