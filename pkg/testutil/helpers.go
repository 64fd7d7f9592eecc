// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
)

// FindRow finds the row for month in a schedule.
// Returns a pointer to the row if found, nil otherwise.
func FindRow(schedule []loans.AmortizationRow, month int) *loans.AmortizationRow {
	for i := range schedule {
		if schedule[i].Month == month {
			return &schedule[i]
		}
	}
	return nil
}

// AlmostEqual reports whether a and b differ by at most tolerance.
func AlmostEqual(a, b, tolerance float64) bool {
	return mathutil.WithinTolerance(a, b, tolerance)
}
