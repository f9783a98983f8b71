package runner

import (
	"time"
)

// TestSuite defines a group of reachability queries against one world.
// It can either be a regular suite with Steps, or a sequence that references
// other case files.
type TestSuite struct {
	Name  string     `json:"name"`
	World string     `json:"world,omitempty"` // Empty uses the server default
	Steps []TestStep `json:"steps,omitempty"` // Used for regular suites
	Cases []string   `json:"cases,omitempty"` // Used for sequences (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one /v1/locations query and its expected outcome
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Items        []string     `json:"items"`
	Techs        []string     `json:"techs,omitempty"`
	Start        string       `json:"start"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a step executes
type Expectations struct {
	Status       *int     `json:"status,omitempty"`        // HTTP status, 200 when unset
	Contains     []string `json:"contains,omitempty"`      // Location names that must be reachable
	NotContains  []string `json:"not_contains,omitempty"`  // Location names that must not be
	MinLocations *int     `json:"min_locations,omitempty"`
	MaxLocations *int     `json:"max_locations,omitempty"`
	Events       []string `json:"events,omitempty"`        // Events that must be collected
	MaxPasses    *int     `json:"max_passes,omitempty"`    // Upper bound on fixed point passes
	Cached       *bool    `json:"cached,omitempty"`
	ErrContains  string   `json:"error_contains,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName  string
	StepName  string
	Success   bool
	Error     error
	Duration  time.Duration
	Locations int
	Cached    bool
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
}
