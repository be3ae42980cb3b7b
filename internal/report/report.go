// Package report renders a finished run as Markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/proofrunner/internal/filelock"
	"github.com/harrison/proofrunner/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown formats a run as a Markdown document with one table row per
// script, in run order.
func Markdown(report *models.RunReport) string {
	var sb strings.Builder

	status := "✅ PASSED"
	if !report.Passed() {
		status = "❌ FAILED"
	}

	sb.WriteString("# Verification Report\n\n")
	sb.WriteString(fmt.Sprintf("- **Run:** `%s`\n", report.ID))
	sb.WriteString(fmt.Sprintf("- **Started:** %s\n", report.StartedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("- **Work dir:** `%s`\n", report.WorkDir))
	sb.WriteString(fmt.Sprintf("- **Verifier:** `%s`\n", report.Verifier))
	sb.WriteString(fmt.Sprintf("- **Duration:** %v\n", report.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("- **Result:** %s (%d/%d passed)\n", status, report.PassedCount(), len(report.Outcomes)))
	if report.Interrupted {
		sb.WriteString("- **Interrupted:** run was cancelled before every script was verified\n")
	}
	sb.WriteString("\n")

	sb.WriteString("| Script | Status | Reason | Exit code | Duration |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, o := range report.Outcomes {
		exitCode := "-"
		duration := "-"
		if o.Invocation != nil {
			exitCode = fmt.Sprintf("%d", o.Invocation.ExitCode)
			duration = o.Invocation.Duration.Round(time.Millisecond).String()
		}
		sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s | %s |\n",
			o.Script, o.Status(), o.Reason, exitCode, duration))
	}

	failed := report.Failed()
	if len(failed) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for _, o := range failed {
			sb.WriteString(fmt.Sprintf("### `%s`\n\n", o.Script))
			if o.Err != nil {
				sb.WriteString(fmt.Sprintf("**Error:** %s\n\n", escapeInline(o.Err.Error())))
			}
			if o.Invocation != nil && strings.TrimSpace(o.Invocation.Stderr) != "" {
				sb.WriteString("```\n")
				sb.WriteString(strings.TrimSpace(o.Invocation.Stderr))
				sb.WriteString("\n```\n\n")
			}
		}
	}

	return sb.String()
}

// HTML renders the Markdown report to a standalone HTML page.
func HTML(report *models.RunReport) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(report)), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>Verification Report</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// Write saves the report to path. Files ending in .html or .htm are rendered
// to HTML; anything else receives the Markdown source.
func Write(path string, report *models.RunReport) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		html, err := HTML(report)
		if err != nil {
			return err
		}
		data = html
	default:
		data = []byte(Markdown(report))
	}

	if err := filelock.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// escapeInline keeps error text from being read as Markdown markup.
func escapeInline(s string) string {
	replacer := strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_", "`", "\\`", "\n", " ")
	return replacer.Replace(s)
}
