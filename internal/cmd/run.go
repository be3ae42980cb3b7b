package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrison/proofrunner/internal/config"
	"github.com/harrison/proofrunner/internal/filelock"
	"github.com/harrison/proofrunner/internal/history"
	"github.com/harrison/proofrunner/internal/logger"
	"github.com/harrison/proofrunner/internal/models"
	"github.com/harrison/proofrunner/internal/report"
	"github.com/harrison/proofrunner/internal/verifier"
	"github.com/spf13/cobra"
)

// ErrScriptsFailed is returned by the run command when at least one script
// did not pass.
var ErrScriptsFailed = errors.New("verification failed")

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Verify every configured script",
		Long: `Run the verifier once per configured script, in order.

Scripts that are missing from the work directory are reported as FAILED
without invoking the verifier. Verifier output is echoed as it is produced
and a PASSED/FAILED summary is printed at the end.

Configuration is loaded from .proofrunner/config.yaml (or config.toml) if
present. CLI flags override configuration file settings.

Examples:
  proofrunner run                          # Verify scripts in ./saw
  proofrunner run --dir proofs/saw         # Use another work directory
  proofrunner run --verifier /opt/saw/bin/saw
  proofrunner run --report summary.html    # Also write an HTML report
  proofrunner run --no-history --verbose`,
		Args: cobra.NoArgs,
		RunE: runCommand,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("log-level", "", "Console log level (trace, debug, info, warn, error)")
	cmd.Flags().Bool("verbose", false, "Show per-script result details")
	cmd.Flags().String("log-dir", "", "Directory for log files")
	cmd.Flags().String("report", "", "Write a Markdown (.md) or HTML (.html) report to this path")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var logLevelPtr, logDirPtr, reportPtr *string
	var noHistoryPtr *bool
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &v
	}
	if cmd.Flags().Changed("report") {
		v, _ := cmd.Flags().GetString("report")
		reportPtr = &v
	}
	if cmd.Flags().Changed("no-history") {
		v, _ := cmd.Flags().GetBool("no-history")
		noHistoryPtr = &v
	}
	cfg.MergeWithFlags(nil, nil, logLevelPtr, logDirPtr, reportPtr, noHistoryPtr)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// A missing work dir ends the run before any lock or log file is created
	if err := verifier.CheckWorkDir(cfg.WorkDir); err != nil {
		return fmt.Errorf("verification aborted: %w", err)
	}

	// Determine log level: verbose flag overrides config
	logLevel := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = "debug"
	}

	consoleLog := logger.NewConsoleLogger(cmd.OutOrStdout(), logLevel)

	lock, err := filelock.Acquire(cfg.LockPath())
	if err != nil {
		if errors.Is(err, filelock.ErrLocked) {
			return fmt.Errorf("another run is in progress: %w", err)
		}
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	defer lock.Unlock()

	fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, logLevel)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer fileLog.Close()

	multiLog := &multiLogger{
		loggers: []verifier.Logger{consoleLog, fileLog},
	}

	tool := verifier.NewExecTool(cfg.Verifier, cfg.VerifierArgs...)
	runner := verifier.NewRunner(runnerOptions(cfg), tool, multiLog)

	result, err := runner.Run(cmd.Context())
	if result == nil {
		return fmt.Errorf("verification aborted: %w", err)
	}

	// A cancelled run still gets its partial results persisted
	persistRun(cmd.Context(), cfg, result, consoleLog)

	if err != nil {
		return fmt.Errorf("verification interrupted: %w", err)
	}

	consoleLog.LogDebug(fmt.Sprintf("Run log: %s", fileLog.RunFile()))

	if !result.Passed() {
		return fmt.Errorf("%w: %d of %d script(s) failed", ErrScriptsFailed, len(result.Failed()), len(result.Outcomes))
	}
	return nil
}

// persistRun records the run in history and writes the report. Failures are
// logged as warnings and never change the run outcome.
func persistRun(ctx context.Context, cfg *config.Config, result *models.RunReport, log *logger.ConsoleLogger) {
	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg.History.DBPath, result); err != nil {
			log.LogWarn(fmt.Sprintf("Failed to record history: %v", err))
		}
	}

	if cfg.ReportPath != "" {
		if err := report.Write(cfg.ReportPath, result); err != nil {
			log.LogWarn(fmt.Sprintf("Failed to write report: %v", err))
		} else {
			log.LogInfo(fmt.Sprintf("Report written to %s", cfg.ReportPath))
		}
	}
}

func recordHistory(ctx context.Context, dbPath string, result *models.RunReport) error {
	// The run context may already be cancelled; history still gets written
	ctx = context.WithoutCancel(ctx)

	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.RecordRun(ctx, result)
}

// multiLogger implements verifier.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []verifier.Logger
}

// LogRunStart forwards to all loggers
func (ml *multiLogger) LogRunStart(report *models.RunReport, scripts []models.Script) {
	for _, logger := range ml.loggers {
		logger.LogRunStart(report, scripts)
	}
}

// LogScriptStart forwards to all loggers
func (ml *multiLogger) LogScriptStart(script models.Script) {
	for _, logger := range ml.loggers {
		logger.LogScriptStart(script)
	}
}

// LogScriptOutput forwards to all loggers
func (ml *multiLogger) LogScriptOutput(script models.Script, inv models.Invocation) {
	for _, logger := range ml.loggers {
		logger.LogScriptOutput(script, inv)
	}
}

// LogScriptError forwards to all loggers
func (ml *multiLogger) LogScriptError(script models.Script, err error) {
	for _, logger := range ml.loggers {
		logger.LogScriptError(script, err)
	}
}

// LogScriptResult forwards to all loggers
func (ml *multiLogger) LogScriptResult(outcome models.Outcome) {
	for _, logger := range ml.loggers {
		logger.LogScriptResult(outcome)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(report *models.RunReport) {
	for _, logger := range ml.loggers {
		logger.LogSummary(report)
	}
}
