package verifier

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harrison/proofrunner/internal/models"
)

// Logger receives runner events as they happen.
type Logger interface {
	LogRunStart(report *models.RunReport, scripts []models.Script)
	LogScriptStart(script models.Script)
	LogScriptOutput(script models.Script, inv models.Invocation)
	LogScriptError(script models.Script, err error)
	LogScriptResult(outcome models.Outcome)
	LogSummary(report *models.RunReport)
}

// Options configures a Runner.
type Options struct {
	WorkDir  string          // Directory the scripts live in and the verifier runs in
	Verifier string          // Verifier label recorded on the report
	Scripts  []models.Script // Scripts to verify, in order
	Markers  []string        // Stdout success markers (defaults when empty)
}

// Runner verifies scripts one after another with a single Tool.
type Runner struct {
	opts   Options
	tool   Tool
	logger Logger
}

// NewRunner creates a Runner. A nil logger discards all events.
func NewRunner(opts Options, tool Tool, logger Logger) *Runner {
	if len(opts.Markers) == 0 {
		opts.Markers = DefaultMarkers()
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Runner{opts: opts, tool: tool, logger: logger}
}

// Run verifies every configured script in order and returns the report.
// It fails without touching any script when the work directory is unusable.
// Per-script problems never abort the run; they are recorded as failures.
// When ctx is cancelled the scripts not yet verified are recorded as
// interrupted and the partial report is returned with ctx's error.
func (r *Runner) Run(ctx context.Context) (*models.RunReport, error) {
	if err := CheckWorkDir(r.opts.WorkDir); err != nil {
		return nil, err
	}

	report := models.NewRunReport(r.opts.WorkDir, r.opts.Verifier)
	r.logger.LogRunStart(report, r.opts.Scripts)

	for i, script := range r.opts.Scripts {
		if err := ctx.Err(); err != nil {
			r.interrupt(report, r.opts.Scripts[i:], err)
			return report, err
		}

		if _, done := report.Outcome(script); done {
			continue
		}

		outcome := r.verify(ctx, script)
		report.Record(outcome)
		r.logger.LogScriptResult(outcome)
	}

	report.Duration = time.Since(report.StartedAt)
	r.logger.LogSummary(report)

	return report, nil
}

// interrupt records every script not yet verified as interrupted and
// finishes the report.
func (r *Runner) interrupt(report *models.RunReport, remaining []models.Script, cause error) {
	report.Interrupted = true
	for _, script := range remaining {
		outcome := models.Outcome{
			Script: script,
			Reason: models.ReasonInterrupted,
			Err:    fmt.Errorf("not verified: %w", cause),
		}
		if report.Record(outcome) {
			r.logger.LogScriptResult(outcome)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	r.logger.LogSummary(report)
}

// verify runs a single script and converts every failure mode into an Outcome.
func (r *Runner) verify(ctx context.Context, script models.Script) models.Outcome {
	path := script.Path(r.opts.WorkDir)
	if _, err := os.Stat(path); err != nil {
		return models.Outcome{
			Script: script,
			Reason: models.ReasonMissing,
			Err:    fmt.Errorf("%w: %s", ErrScriptMissing, path),
		}
	}

	r.logger.LogScriptStart(script)

	inv, err := r.tool.Run(ctx, r.opts.WorkDir, script)
	if err != nil {
		r.logger.LogScriptError(script, err)
		return models.Outcome{
			Script: script,
			Reason: models.ReasonInvocationError,
			Err:    err,
		}
	}

	r.logger.LogScriptOutput(script, inv)

	passed, reason := Classify(inv, r.opts.Markers)
	return models.Outcome{
		Script:     script,
		Passed:     passed,
		Reason:     reason,
		Invocation: &inv,
	}
}

// CheckWorkDir verifies that dir exists, is a directory and can be opened.
func CheckWorkDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: no directory configured", ErrWorkDirUnavailable)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWorkDirUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrWorkDirUnavailable, dir)
	}

	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWorkDirUnavailable, err)
	}
	f.Close()

	return nil
}

type noopLogger struct{}

func (noopLogger) LogRunStart(*models.RunReport, []models.Script) {}
func (noopLogger) LogScriptStart(models.Script) {}
func (noopLogger) LogScriptOutput(models.Script, models.Invocation) {}
func (noopLogger) LogScriptError(models.Script, error) {}
func (noopLogger) LogScriptResult(models.Outcome) {}
func (noopLogger) LogSummary(*models.RunReport) {}
