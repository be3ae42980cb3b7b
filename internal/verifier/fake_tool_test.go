package verifier

import (
	"context"
	"fmt"

	"github.com/harrison/proofrunner/internal/models"
)

// fakeTool returns canned invocations per script and records call order.
type fakeTool struct {
	invocations map[models.Script]models.Invocation
	errors      map[models.Script]error
	calls       []models.Script
	dirs        []string
	afterCall   func() // Runs after every call, e.g. to cancel the run context
}

func newFakeTool() *fakeTool {
	return &fakeTool{
		invocations: make(map[models.Script]models.Invocation),
		errors:      make(map[models.Script]error),
	}
}

func (f *fakeTool) set(script models.Script, exitCode int, stdout, stderr string) {
	f.invocations[script] = models.Invocation{ExitCode: exitCode, Stdout: stdout, Stderr: stderr}
}

func (f *fakeTool) fail(script models.Script, err error) {
	f.errors[script] = err
}

func (f *fakeTool) Run(ctx context.Context, dir string, script models.Script) (models.Invocation, error) {
	f.calls = append(f.calls, script)
	f.dirs = append(f.dirs, dir)
	if f.afterCall != nil {
		defer f.afterCall()
	}

	if err, ok := f.errors[script]; ok {
		return models.Invocation{}, err
	}
	inv, ok := f.invocations[script]
	if !ok {
		return models.Invocation{}, fmt.Errorf("unexpected script %s", script)
	}
	return inv, nil
}

// recordingLogger captures runner events in order.
type recordingLogger struct {
	events []string
}

func (l *recordingLogger) LogRunStart(report *models.RunReport, scripts []models.Script) {
	l.events = append(l.events, fmt.Sprintf("start:%d", len(scripts)))
}

func (l *recordingLogger) LogScriptStart(script models.Script) {
	l.events = append(l.events, "invoke:"+script.String())
}

func (l *recordingLogger) LogScriptOutput(script models.Script, inv models.Invocation) {
	l.events = append(l.events, "output:"+script.String())
}

func (l *recordingLogger) LogScriptError(script models.Script, err error) {
	l.events = append(l.events, "error:"+script.String())
}

func (l *recordingLogger) LogScriptResult(outcome models.Outcome) {
	l.events = append(l.events, fmt.Sprintf("result:%s:%s", outcome.Script, outcome.Status()))
}

func (l *recordingLogger) LogSummary(report *models.RunReport) {
	l.events = append(l.events, fmt.Sprintf("summary:%d", len(report.Outcomes)))
}
