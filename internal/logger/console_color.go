package logger

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harrison/proofrunner/internal/models"
)

// colorScheme defines consistent colors for summary output.
// Green: passed scripts
// Red: failed scripts
// Yellow: scripts that never reached the verifier
// Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats a single metric with colorized label and value.
// Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	labelColored := scheme.label.Sprint(label)
	valueColored := scheme.value.Sprintf("%v", value)
	return fmt.Sprintf("%s: %s", labelColored, valueColored)
}

// statusLabel colors the PASSED/FAILED label. Failures that never reached
// the verifier carry their reason in yellow.
func statusLabel(o models.Outcome, scheme *colorScheme) string {
	if o.Passed {
		return scheme.success.Sprint(models.StatusPassed)
	}

	label := scheme.fail.Sprint(models.StatusFailed)
	switch o.Reason {
	case models.ReasonMissing, models.ReasonInvocationError, models.ReasonInterrupted:
		label += " " + scheme.warn.Sprintf("(%s)", o.Reason)
	}
	return label
}

// formatCounts renders "passed/total passed", green when everything passed.
func formatCounts(passed, total int, scheme *colorScheme) string {
	text := fmt.Sprintf("%d/%d passed", passed, total)
	if passed == total && total > 0 {
		return scheme.success.Sprint(text)
	}
	return scheme.fail.Sprint(text)
}
