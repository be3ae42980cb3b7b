// Package logger provides logging implementations for proofrunner.
//
// ConsoleLogger prints run progress, the verifier's raw output and the final
// PASSED/FAILED summary. FileLogger keeps a per-run log file plus one log per
// script. Both implement verifier.Logger and are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/proofrunner/internal/models"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// Leveled messages are prefixed with [HH:MM:SS] [LEVEL]. Verifier output and
// the summary table are always written, whatever the level.
// Color output is enabled only when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	verifier    string
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}

	// NO_COLOR and non-TTY stdout disable colors globally
	if color.NoColor {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}

	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message.
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		cl.writer.Write([]byte(cl.formatWithColor(ts, level, message)))
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch level {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// LogRunStart announces the run at INFO level.
func (cl *ConsoleLogger) LogRunStart(report *models.RunReport, scripts []models.Script) {
	cl.mutex.Lock()
	cl.verifier = report.Verifier
	cl.mutex.Unlock()

	cl.LogInfo(fmt.Sprintf("Verifying %d script(s) in %s with %s", len(scripts), report.WorkDir, report.Verifier))
}

// LogScriptStart announces a verifier invocation at INFO level.
func (cl *ConsoleLogger) LogScriptStart(script models.Script) {
	cl.mutex.Lock()
	verifier := cl.verifier
	cl.mutex.Unlock()

	if verifier == "" {
		verifier = "verifier"
	}
	cl.LogInfo(fmt.Sprintf("Running %s %s", verifier, script))
}

// LogScriptOutput echoes the verifier's stdout and, if non-empty, its stderr.
func (cl *ConsoleLogger) LogScriptOutput(script models.Script, inv models.Invocation) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	cl.writer.Write([]byte(withTrailingNewline(inv.Stdout)))
	if inv.Stderr != "" {
		cl.writer.Write([]byte(withTrailingNewline(inv.Stderr)))
	}
}

// LogScriptError reports a verifier that could not be run at ERROR level.
func (cl *ConsoleLogger) LogScriptError(script models.Script, err error) {
	cl.LogError(fmt.Sprintf("Error running %s: %v", script, err))
}

// LogScriptResult logs a classified script. Missing files are reported at
// WARN level, everything else at DEBUG.
func (cl *ConsoleLogger) LogScriptResult(outcome models.Outcome) {
	switch outcome.Reason {
	case models.ReasonMissing:
		cl.LogWarn(fmt.Sprintf("%s: file not found", outcome.Script))
	case models.ReasonInvocationError:
		// Already reported by LogScriptError
	default:
		cl.LogDebug(describeOutcome(outcome))
	}
}

// LogSummary prints one PASSED/FAILED line per script in run order.
func (cl *ConsoleLogger) LogSummary(report *models.RunReport) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	scheme := newColorScheme()
	var sb strings.Builder

	sb.WriteString("\nSummary:\n")
	for _, o := range report.Outcomes {
		label := o.Status()
		if cl.colorOutput {
			label = statusLabel(o, scheme)
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", o.Script, label))
	}

	passed := report.PassedCount()
	total := len(report.Outcomes)
	if cl.colorOutput {
		sb.WriteString(fmt.Sprintf("%s (%s)\n",
			formatCounts(passed, total, scheme),
			formatColorizedMetric("duration", formatDuration(report.Duration), scheme)))
	} else {
		sb.WriteString(fmt.Sprintf("%d/%d passed (duration: %s)\n", passed, total, formatDuration(report.Duration)))
	}
	if report.Interrupted {
		sb.WriteString("Run interrupted before every script was verified\n")
	}

	cl.writer.Write([]byte(sb.String()))
}

// describeOutcome renders a one-line explanation of an outcome.
func describeOutcome(o models.Outcome) string {
	msg := fmt.Sprintf("%s: %s (%s", o.Script, o.Status(), o.Reason)
	if o.Invocation != nil {
		msg += fmt.Sprintf(", exit %d, %s", o.Invocation.ExitCode, formatDuration(o.Invocation.Duration))
	}
	if o.Err != nil {
		msg += fmt.Sprintf(", %v", o.Err)
	}
	return msg + ")"
}

func withTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	}
}
