package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jwebster45206/rando-engine/internal/handlers"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running rando-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	WorldOverride     string // If set, overrides the world for all test cases
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	worldName := suite.World
	if r.WorldOverride != "" {
		worldName = r.WorldOverride
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, worldName, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) runStep(ctx context.Context, worldName string, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	status, body, err := r.postLocations(ctx, handlers.QueryRequest{
		World: worldName,
		Items: step.Items,
		Techs: step.Techs,
		Start: step.Start,
	})
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}

	var resp handlers.LocationsResponse
	var errResp handlers.ErrorResponse
	if status == http.StatusOK {
		if err := json.Unmarshal(body, &resp); err != nil {
			result.Error = fmt.Errorf("failed to parse response: %w", err)
			return result
		}
	} else if err := json.Unmarshal(body, &errResp); err != nil {
		result.Error = fmt.Errorf("status %d with unreadable body: %s", status, string(body))
		return result
	}

	result.Locations = len(resp.Locations)
	result.Cached = resp.Cached
	if err := checkExpectations(step.Expectations, status, &resp, errResp.Error); err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	return result
}

func (r *Runner) postLocations(ctx context.Context, q handlers.QueryRequest) (int, []byte, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/locations", bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func checkExpectations(exp Expectations, status int, resp *handlers.LocationsResponse, errMsg string) error {
	want := http.StatusOK
	if exp.Status != nil {
		want = *exp.Status
	}
	if status != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, status, errMsg)
	}
	if exp.ErrContains != "" && !strings.Contains(errMsg, exp.ErrContains) {
		return fmt.Errorf("expected error containing %q, got %q", exp.ErrContains, errMsg)
	}
	if status != http.StatusOK {
		return nil
	}

	names := make([]string, len(resp.Locations))
	for i, loc := range resp.Locations {
		names[i] = loc.Name
	}

	for _, name := range exp.Contains {
		if !slices.Contains(names, name) {
			return fmt.Errorf("expected %q to be reachable. Reachable: %v", name, names)
		}
	}
	for _, name := range exp.NotContains {
		if slices.Contains(names, name) {
			return fmt.Errorf("expected %q not to be reachable", name)
		}
	}
	if exp.MinLocations != nil && len(names) < *exp.MinLocations {
		return fmt.Errorf("expected at least %d locations, got %d", *exp.MinLocations, len(names))
	}
	if exp.MaxLocations != nil && len(names) > *exp.MaxLocations {
		return fmt.Errorf("expected at most %d locations, got %d", *exp.MaxLocations, len(names))
	}
	for _, event := range exp.Events {
		if !slices.Contains(resp.Events, event) {
			return fmt.Errorf("expected event %q. Events: %v", event, resp.Events)
		}
	}
	if exp.Cached != nil && resp.Cached != *exp.Cached {
		return fmt.Errorf("expected cached=%t, got %t", *exp.Cached, resp.Cached)
	}
	if exp.MaxPasses != nil && resp.Passes > *exp.MaxPasses {
		return fmt.Errorf("expected at most %d passes, got %d", *exp.MaxPasses, resp.Passes)
	}
	return nil
}
