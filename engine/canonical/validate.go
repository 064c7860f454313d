package canonical

import (
	"fmt"
	"time"
)

// Validate enforces the structural invariants of a canonical test case:
// step order values are 1..N, dense and strictly increasing, and timestamps
// are not inverted.
func (tc *TestCase) Validate() error {
	if tc.Name == "" {
		return fmt.Errorf("test case name is required")
	}
	if err := validateStepOrder(tc.TestSteps); err != nil {
		return fmt.Errorf("test case %q: %w", tc.Name, err)
	}
	if !tc.CreatedAt.IsZero() && !tc.UpdatedAt.IsZero() && tc.UpdatedAt.Before(tc.CreatedAt) {
		return fmt.Errorf("test case %q: updated_at precedes created_at", tc.Name)
	}
	return nil
}

func validateStepOrder(steps []TestStep) error {
	for i := range steps {
		want := i + 1
		if steps[i].Order != want {
			return fmt.Errorf("step order must be dense 1-based: got %d at position %d", steps[i].Order, want)
		}
	}
	return nil
}

// NormalizeStepOrder renumbers steps by position. Source systems that omit
// explicit ordering get positional numbering.
func (tc *TestCase) NormalizeStepOrder() {
	for i := range tc.TestSteps {
		tc.TestSteps[i].Order = i + 1
	}
}

// Validate checks an execution against the test case it ran, enforcing that
// every step result references a known step id and result order is dense.
func (te *TestExecution) Validate(tc *TestCase) error {
	if te.TestCaseID == "" {
		return fmt.Errorf("execution requires a test_case_id")
	}
	for i := range te.StepResults {
		want := i + 1
		if te.StepResults[i].Order != want {
			return fmt.Errorf("step result order must be dense 1-based: got %d at position %d", te.StepResults[i].Order, want)
		}
	}
	if tc != nil {
		known := make(map[string]bool, len(tc.TestSteps))
		for i := range tc.TestSteps {
			known[tc.TestSteps[i].ID] = true
		}
		for i := range te.StepResults {
			if id := te.StepResults[i].StepID; id != "" && !known[id] {
				return fmt.Errorf("step result %d references unknown step %q", i+1, id)
			}
		}
	}
	if err := validateWindow(te.StartTime, te.EndTime); err != nil {
		return fmt.Errorf("execution %q: %w", te.ID, err)
	}
	return nil
}

func validateWindow(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("end time precedes start time")
	}
	return nil
}

// NormalizeResultOrder renumbers step results by position.
func (te *TestExecution) NormalizeResultOrder() {
	for i := range te.StepResults {
		te.StepResults[i].Order = i + 1
	}
}
