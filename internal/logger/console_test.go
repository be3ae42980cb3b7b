package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harrison/proofrunner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.RunReport {
	r := models.NewRunReport("/proofs/saw", "saw")
	r.Record(models.Outcome{
		Script:     "a.saw",
		Passed:     true,
		Reason:     models.ReasonPassed,
		Invocation: &models.Invocation{ExitCode: 0, Stdout: "Proof succeeded!", Duration: 2 * time.Second},
	})
	r.Record(models.Outcome{Script: "b.saw", Reason: models.ReasonMissing})
	r.Record(models.Outcome{
		Script:     "c.saw",
		Passed:     true,
		Reason:     models.ReasonPassed,
		Invocation: &models.Invocation{ExitCode: 0, Stdout: "Verified"},
	})
	r.Duration = 90 * time.Second
	return r
}

func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "DEBUG")

		require.NotNil(t, logger)
		assert.Equal(t, "debug", logger.logLevel)
		assert.False(t, logger.colorOutput, "buffers are never terminals")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger := NewConsoleLogger(&bytes.Buffer{}, "chatty")
		assert.Equal(t, "info", logger.logLevel)
	})

	t.Run("nil writer discards everything", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "trace")
		logger.LogInfo("ignored")
		logger.LogScriptOutput("a.saw", models.Invocation{Stdout: "x"})
		logger.LogSummary(sampleReport())
	})
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "warn")

	logger.LogDebug("debug message")
	logger.LogInfo("info message")
	logger.LogWarn("warn message")
	logger.LogError("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "[WARN] warn message")
	assert.Contains(t, out, "[ERROR] error message")
}

func TestConsoleLogger_SummaryInOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "error")

	logger.LogSummary(sampleReport())

	out := buf.String()
	assert.Contains(t, out, "Summary:")
	a := strings.Index(out, "a.saw: PASSED")
	b := strings.Index(out, "b.saw: FAILED")
	c := strings.Index(out, "c.saw: PASSED")
	require.True(t, a >= 0 && b >= 0 && c >= 0, out)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
	assert.Contains(t, out, "2/3 passed (duration: 1m30s)")
}

func TestConsoleLogger_ScriptOutputPassthrough(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "error")

	logger.LogScriptOutput("a.saw", models.Invocation{Stdout: "line one\nProof succeeded!", Stderr: ""})
	assert.Equal(t, "line one\nProof succeeded!\n", buf.String())

	buf.Reset()
	logger.LogScriptOutput("b.saw", models.Invocation{Stdout: "out\n", Stderr: "err\n"})
	assert.Equal(t, "out\nerr\n", buf.String())
}

func TestConsoleLogger_RunEvents(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "debug")

	report := models.NewRunReport("/proofs/saw", "saw")
	logger.LogRunStart(report, []models.Script{"a.saw", "b.saw"})
	logger.LogScriptStart("a.saw")
	logger.LogScriptError("a.saw", errors.New("permission denied"))
	logger.LogScriptResult(models.Outcome{Script: "b.saw", Reason: models.ReasonMissing})
	logger.LogScriptResult(models.Outcome{
		Script:     "c.saw",
		Reason:     models.ReasonNoMarker,
		Invocation: &models.Invocation{ExitCode: 0},
	})

	out := buf.String()
	assert.Contains(t, out, "Verifying 2 script(s) in /proofs/saw with saw")
	assert.Contains(t, out, "Running saw a.saw")
	assert.Contains(t, out, "[ERROR] Error running a.saw: permission denied")
	assert.Contains(t, out, "[WARN] b.saw: file not found")
	assert.Contains(t, out, "[DEBUG] c.saw: FAILED (no_marker, exit 0, 0s)")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5s", formatDuration(5*time.Second))
	assert.Equal(t, "1m30s", formatDuration(90*time.Second))
	assert.Equal(t, "2m", formatDuration(2*time.Minute))
	assert.Equal(t, "2h15m", formatDuration(2*time.Hour+15*time.Minute))
	assert.Equal(t, "1h", formatDuration(time.Hour))
}

func TestStatusLabel(t *testing.T) {
	scheme := newColorScheme()

	assert.Contains(t, statusLabel(models.Outcome{Passed: true}, scheme), models.StatusPassed)
	assert.Contains(t, statusLabel(models.Outcome{Reason: models.ReasonMissing}, scheme), "missing")
	assert.NotContains(t, statusLabel(models.Outcome{Reason: models.ReasonNoMarker}, scheme), "no_marker")
}

func TestConsoleLogger_SummaryInterrupted(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	report := sampleReport()
	report.Interrupted = true
	logger.LogSummary(report)

	assert.Contains(t, buf.String(), "Run interrupted before every script was verified")
}
