package models

import (
	"time"

	"github.com/google/uuid"
)

// Reason explains why a script was classified the way it was.
type Reason string

// Outcome reasons
const (
	ReasonPassed          Reason = "passed"           // Exit 0 and a success marker in stdout
	ReasonMissing         Reason = "missing"          // Script file not found in the work dir
	ReasonInvocationError Reason = "invocation_error" // Verifier could not be started
	ReasonNonZeroExit     Reason = "nonzero_exit"     // Verifier exited with a non-zero code
	ReasonNoMarker        Reason = "no_marker"        // Exit 0 but no success marker in stdout
	ReasonInterrupted     Reason = "interrupted"      // Run was cancelled before the script was verified
)

// Status labels printed in the summary
const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
)

// Invocation is the captured result of one synchronous verifier call.
type Invocation struct {
	ExitCode int           // Process exit code
	Stdout   string        // Captured standard output
	Stderr   string        // Captured standard error
	Duration time.Duration // Wall time of the call
}

// Outcome is the classified result for a single script.
type Outcome struct {
	Script     Script      // Script this outcome belongs to
	Passed     bool        // Whether the script verified
	Reason     Reason      // Why it passed or failed
	Invocation *Invocation // Nil when the verifier was never run
	Err        error       // Invocation error, if any
}

// Status returns the PASSED/FAILED summary label.
func (o Outcome) Status() string {
	if o.Passed {
		return StatusPassed
	}
	return StatusFailed
}

// RunReport is the ordered record of a whole verification run.
type RunReport struct {
	ID        string        // Unique run identifier
	WorkDir   string        // Directory the scripts were resolved against
	Verifier  string        // Verifier executable
	StartedAt time.Time     // When the run started
	Duration  time.Duration // Total run time
	Outcomes  []Outcome     // One entry per script, in configured order

	// Interrupted is set when the run was cancelled before every script
	// was verified. An interrupted run never passes.
	Interrupted bool
}

// NewRunReport creates an empty report with a fresh ID.
func NewRunReport(workDir, verifier string) *RunReport {
	return &RunReport{
		ID:        uuid.New().String(),
		WorkDir:   workDir,
		Verifier:  verifier,
		StartedAt: time.Now(),
	}
}

// Record appends the outcome for a script. A script that already has an
// outcome is left untouched and Record returns false.
func (r *RunReport) Record(outcome Outcome) bool {
	if _, ok := r.Outcome(outcome.Script); ok {
		return false
	}
	r.Outcomes = append(r.Outcomes, outcome)
	return true
}

// Outcome looks up the recorded outcome for a script.
func (r *RunReport) Outcome(script Script) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Script == script {
			return o, true
		}
	}
	return Outcome{}, false
}

// Passed reports whether every recorded script passed.
// An empty or interrupted report is not a passing run.
func (r *RunReport) Passed() bool {
	if len(r.Outcomes) == 0 || r.Interrupted {
		return false
	}
	for _, o := range r.Outcomes {
		if !o.Passed {
			return false
		}
	}
	return true
}

// Failed returns the failed outcomes in run order.
func (r *RunReport) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			failed = append(failed, o)
		}
	}
	return failed
}

// PassedCount returns the number of passing scripts.
func (r *RunReport) PassedCount() int {
	return len(r.Outcomes) - len(r.Failed())
}

// ExitCode maps the report onto the process exit status.
func (r *RunReport) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}
