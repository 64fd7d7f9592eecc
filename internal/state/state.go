// Package state holds the cross-view application state: the current EMI, the raw loan
// form values and the theme. A single State is created at startup and shared by pointer.
package state

import "sync"

// FormValues are the loan form fields exactly as the user typed them.
type FormValues struct {
	LoanAmount   string `json:"loanAmount"`
	InterestRate string `json:"interestRate"`
	TermYears    string `json:"termYears"`
}

// Snapshot is a point-in-time copy of State.
type Snapshot struct {
	EMI        *float64   `json:"emi"`
	FormValues FormValues `json:"formValues"`
	DarkMode   bool       `json:"darkMode"`
}

// State is safe for concurrent use.
type State struct {
	mu         sync.RWMutex
	emi        *float64
	formValues FormValues
	darkMode   bool
}

// New returns a State with no EMI, an empty form and the light theme.
func New() *State {
	return &State{}
}

// EMI returns the current EMI, or nil when none has been computed or it was reset.
func (s *State) EMI() *float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyFloat(s.emi)
}

// SetEMI replaces the current EMI; nil clears it.
func (s *State) SetEMI(emi *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emi = copyFloat(emi)
}

// Reset clears the EMI and keeps the form values.
func (s *State) Reset() {
	s.SetEMI(nil)
}

// FormValues returns the stored form values.
func (s *State) FormValues() FormValues {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formValues
}

// SetFormValues replaces the stored form values.
func (s *State) SetFormValues(values FormValues) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formValues = values
}

// Submit stores form values and the EMI computed from them in one step, so readers
// never observe an EMI paired with other form values.
func (s *State) Submit(values FormValues, emi *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formValues = values
	s.emi = copyFloat(emi)
}

// DarkMode reports whether the dark theme is active.
func (s *State) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkMode
}

// ToggleDarkMode flips the theme and returns the new value.
func (s *State) ToggleDarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkMode = !s.darkMode
	return s.darkMode
}

// Snapshot returns a consistent copy of the whole state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		EMI:        copyFloat(s.emi),
		FormValues: s.formValues,
		DarkMode:   s.darkMode,
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
