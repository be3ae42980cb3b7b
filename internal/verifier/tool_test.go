package verifier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/proofrunner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeVerifier installs an executable shell script standing in for saw.
func writeFakeVerifier(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-saw")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestExecTool_CapturesStreamsAndExitCode(t *testing.T) {
	bin := writeFakeVerifier(t, `echo "checking $1"; echo "warn: slow" 1>&2; exit 3`)
	dir := writeScripts(t, "a.saw")

	inv, err := NewExecTool(bin).Run(context.Background(), dir, "a.saw")
	require.NoError(t, err)

	assert.Equal(t, 3, inv.ExitCode)
	assert.Equal(t, "checking a.saw\n", inv.Stdout)
	assert.Equal(t, "warn: slow\n", inv.Stderr)
}

func TestExecTool_RunsInWorkDir(t *testing.T) {
	bin := writeFakeVerifier(t, `test -f "$1" && echo "Proof succeeded!"`)
	dir := writeScripts(t, "present.saw")

	inv, err := NewExecTool(bin).Run(context.Background(), dir, "present.saw")
	require.NoError(t, err)
	assert.Equal(t, 0, inv.ExitCode)
	assert.Contains(t, inv.Stdout, "Proof succeeded!")
}

func TestExecTool_ExtraArgsPrecedeScript(t *testing.T) {
	bin := writeFakeVerifier(t, `echo "$@"`)
	dir := writeScripts(t, "a.saw")

	inv, err := NewExecTool(bin, "-v", "quiet").Run(context.Background(), dir, "a.saw")
	require.NoError(t, err)
	assert.Equal(t, "-v quiet a.saw\n", inv.Stdout)
}

func TestExecTool_MissingExecutable(t *testing.T) {
	dir := writeScripts(t, "a.saw")

	_, err := NewExecTool("proofrunner-no-such-verifier").Run(context.Background(), dir, "a.saw")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVerifierNotFound)
}

func TestExecTool_ResolvesRelativePath(t *testing.T) {
	tool := NewExecTool(filepath.Join("bin", "saw"))
	assert.True(t, filepath.IsAbs(tool.Path))

	tool = NewExecTool("saw")
	assert.Equal(t, "saw", tool.Path)
}

func TestRunner_WithExecTool(t *testing.T) {
	bin := writeFakeVerifier(t, `case "$1" in
  good.saw) echo "Proof succeeded!" ;;
  quiet.saw) echo "nothing to see" ;;
  bad.saw) echo "Verified"; exit 1 ;;
esac`)
	dir := writeScripts(t, "good.saw", "quiet.saw", "bad.saw")

	report, err := NewRunner(Options{
		WorkDir:  dir,
		Verifier: bin,
		Scripts:  []models.Script{"good.saw", "quiet.saw", "gone.saw", "bad.saw"},
	}, NewExecTool(bin), nil).Run(context.Background())
	require.NoError(t, err)

	want := map[models.Script]models.Reason{
		"good.saw":  models.ReasonPassed,
		"quiet.saw": models.ReasonNoMarker,
		"gone.saw":  models.ReasonMissing,
		"bad.saw":   models.ReasonNonZeroExit,
	}
	require.Len(t, report.Outcomes, len(want))
	for _, o := range report.Outcomes {
		assert.Equal(t, want[o.Script], o.Reason, o.Script)
	}
	assert.Equal(t, 1, report.ExitCode())
}
