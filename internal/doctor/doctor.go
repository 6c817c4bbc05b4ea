// Package doctor provides diagnostic checks for a project's configuration root.
//
// Checks are read-only. Those implementing [Fixer] can repair what they find
// when the runner is asked to fix.
package doctor

import (
	"time"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

// Check is the interface that diagnostic checks must implement.
type Check interface {
	// Name returns the unique identifier for this check.
	Name() string

	// Category returns the grouping for this check (e.g., "project", "hooks").
	Category() string

	// Run executes the diagnostic check and returns its result.
	Run() *CheckResult
}

// Runner executes diagnostic checks in registration order.
type Runner struct {
	checks []Check
}

// NewRunner creates a runner with the given checks registered.
func NewRunner(checks ...Check) *Runner {
	r := &Runner{}
	for _, c := range checks {
		r.AddCheck(c)
	}
	return r
}

// AddCheck registers a diagnostic check with the runner.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Run executes all registered checks and returns a report. A check that
// returns no result is reported as an error under its own name.
func (r *Runner) Run() *DoctorReport {
	report := &DoctorReport{
		Timestamp: time.Now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		result := check.Run()
		if result == nil {
			result = &CheckResult{
				Name:     check.Name(),
				Category: check.Category(),
				Status:   SeverityError,
				Message:  "check produced no result",
			}
		}
		report.Results = append(report.Results, result)
		report.Summary.add(result.Status)
	}

	return report
}

// Fix runs Fix on every registered check that implements Fixer and reports
// fixable issues. It must be called after Run.
func (r *Runner) Fix() []FixResult {
	var results []FixResult
	for _, check := range r.checks {
		fixer, ok := check.(Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		results = append(results, fixer.Fix()...)
	}
	return results
}

// DoctorReport is the outcome of one run: every result plus severity counts.
type DoctorReport struct {
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Results   []*CheckResult `json:"results" yaml:"results"`
	Summary   Summary        `json:"summary" yaml:"summary"`
}

// HasErrors reports whether any check failed.
func (r *DoctorReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings reports whether any check warned.
func (r *DoctorReport) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// ExitCode maps the report onto the process exit code. Errors outrank
// warnings.
func (r *DoctorReport) ExitCode() int {
	switch {
	case r.HasErrors():
		return errors.ExitSystem
	case r.HasWarnings():
		return errors.ExitUser
	default:
		return errors.ExitSuccess
	}
}
