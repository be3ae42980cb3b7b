package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/proofrunner/internal/models"
)

// FileLogger logs run events to files in the log directory.
// It creates a timestamped per-run log file, one detailed log per script,
// and maintains a latest.log symlink pointing to the most recent run.
type FileLogger struct {
	logDir     string
	runLog     *os.File
	runFile    string
	scriptsDir string
	logLevel   string
	mu         sync.Mutex
}

// NewFileLoggerWithDirAndLevel creates a FileLogger writing into logDir.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	scriptsDir := filepath.Join(logDir, "scripts")
	if err := os.MkdirAll(scriptsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scripts directory: %w", err)
	}

	// Generate timestamped filename: run-YYYYMMDD-HHMMSS.log
	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:     logDir,
		runLog:     file,
		runFile:    runFile,
		scriptsDir: scriptsDir,
		logLevel:   normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== Proofrunner Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// RunFile returns the path of the current run log.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogRunStart records the run ID, work dir, verifier and script list.
func (fl *FileLogger) LogRunStart(report *models.RunReport, scripts []models.Script) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run ID: %s\n", report.ID))
	sb.WriteString(fmt.Sprintf("Work dir: %s\n", report.WorkDir))
	sb.WriteString(fmt.Sprintf("Verifier: %s\n", report.Verifier))
	sb.WriteString("Scripts:\n")
	for i, s := range scripts {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, s))
	}
	sb.WriteString("\n")
	fl.writeRunLog(sb.String())
}

// LogScriptStart records a verifier invocation at INFO level.
func (fl *FileLogger) LogScriptStart(script models.Script) {
	fl.logWithLevel("INFO", fmt.Sprintf("Running %s", script))
}

// LogScriptOutput writes the full verifier output to scripts/<script>.log.
func (fl *FileLogger) LogScriptOutput(script models.Script, inv models.Invocation) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== %s ===\n", script))
	sb.WriteString(fmt.Sprintf("Timestamp: %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Exit code: %d\n", inv.ExitCode))
	sb.WriteString(fmt.Sprintf("Duration: %.1fs\n", inv.Duration.Seconds()))
	sb.WriteString("\n--- stdout ---\n")
	sb.WriteString(withTrailingNewline(inv.Stdout))
	if inv.Stderr != "" {
		sb.WriteString("\n--- stderr ---\n")
		sb.WriteString(withTrailingNewline(inv.Stderr))
	}

	path := fl.scriptLogPath(script)
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		fl.logWithLevel("WARN", fmt.Sprintf("failed to write script log %s: %v", path, err))
	}
}

// LogScriptError records a verifier that could not be run at ERROR level.
func (fl *FileLogger) LogScriptError(script models.Script, err error) {
	fl.logWithLevel("ERROR", fmt.Sprintf("Error running %s: %v", script, err))
}

// LogScriptResult records every classified script at INFO level.
func (fl *FileLogger) LogScriptResult(outcome models.Outcome) {
	fl.logWithLevel("INFO", describeOutcome(outcome))
}

// LogSummary records the PASSED/FAILED table and the overall status.
func (fl *FileLogger) LogSummary(report *models.RunReport) {
	var sb strings.Builder
	sb.WriteString("\n=== Summary ===\n")
	for _, o := range report.Outcomes {
		sb.WriteString(fmt.Sprintf("%s: %s\n", o.Script, o.Status()))
	}
	sb.WriteString(fmt.Sprintf("Passed: %d/%d\n", report.PassedCount(), len(report.Outcomes)))
	sb.WriteString(fmt.Sprintf("Duration: %.1fs\n", report.Duration.Seconds()))

	status := "SUCCESS"
	switch {
	case report.Interrupted:
		status = "INTERRUPTED"
	case !report.Passed():
		status = "FAILED"
	}
	sb.WriteString(fmt.Sprintf("Status: %s\n", status))
	fl.writeRunLog(sb.String())
}

// scriptLogPath maps a script name onto a flat file name in scriptsDir.
func (fl *FileLogger) scriptLogPath(script models.Script) string {
	name := strings.ReplaceAll(script.String(), string(filepath.Separator), "_")
	return filepath.Join(fl.scriptsDir, name+".log")
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
