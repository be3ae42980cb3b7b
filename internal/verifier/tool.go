package verifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/proofrunner/internal/models"
)

// Tool abstracts one synchronous verifier call for testability.
// A non-zero exit status is reported through Invocation.ExitCode, not as an
// error; an error means the tool could not be run at all.
type Tool interface {
	Run(ctx context.Context, dir string, script models.Script) (models.Invocation, error)
}

// ExecTool runs the verifier executable as a subprocess.
type ExecTool struct {
	Path string   // Executable name or path
	Args []string // Extra arguments placed before the script name
}

// NewExecTool creates an ExecTool for the given executable.
// Relative paths containing a separator are resolved against the current
// directory so they do not change meaning when the tool runs in the work dir.
func NewExecTool(path string, args ...string) *ExecTool {
	if strings.ContainsRune(path, filepath.Separator) && !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return &ExecTool{Path: path, Args: args}
}

// Run executes the verifier with the script as its final argument, in dir,
// and waits for it to exit. Stdout and stderr are captured separately.
func (t *ExecTool) Run(ctx context.Context, dir string, script models.Script) (models.Invocation, error) {
	args := append(append([]string{}, t.Args...), script.String())
	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	inv := models.Invocation{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			inv.ExitCode = exitErr.ExitCode()
			return inv, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return inv, fmt.Errorf("%w: %s", ErrVerifierNotFound, t.Path)
		}
		return inv, fmt.Errorf("failed to run %s %s: %w", t.Path, script, err)
	}

	return inv, nil
}
