package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// workspace is a throwaway proofrunner setup rooted in a temp dir.
type workspace struct {
	root       string
	workDir    string
	stateDir   string
	logDir     string
	dbPath     string
	verifier   string
	configPath string
}

// fakeVerifierBody passes a.saw, fails b.saw with a non-zero exit and
// prints output without a marker for anything else.
const fakeVerifierBody = `case "$1" in
  a.saw) echo "Proof succeeded!" ;;
  b.saw) echo "Proof failed" ; echo "counterexample found" 1>&2 ; exit 2 ;;
  *) echo "done" ;;
esac`

// newWorkspace creates the work dir with the given script files, a fake
// verifier and a config file listing scripts in order.
func newWorkspace(t *testing.T, present []string, scripts []string) *workspace {
	t.Helper()

	root := t.TempDir()
	ws := &workspace{
		root:       root,
		workDir:    filepath.Join(root, "saw"),
		stateDir:   filepath.Join(root, "state"),
		logDir:     filepath.Join(root, "logs"),
		dbPath:     filepath.Join(root, "state", "history.db"),
		verifier:   filepath.Join(root, "fake-saw"),
		configPath: filepath.Join(root, "config.yaml"),
	}

	require.NoError(t, os.MkdirAll(ws.workDir, 0755))
	for _, name := range present {
		require.NoError(t, os.WriteFile(filepath.Join(ws.workDir, name), []byte("// proof\n"), 0644))
	}

	require.NoError(t, os.WriteFile(ws.verifier, []byte("#!/bin/sh\n"+fakeVerifierBody+"\n"), 0755))

	var sb strings.Builder
	fmt.Fprintf(&sb, "work_dir: %q\n", ws.workDir)
	fmt.Fprintf(&sb, "verifier: %q\n", ws.verifier)
	sb.WriteString("scripts:\n")
	for _, s := range scripts {
		fmt.Fprintf(&sb, "  - %q\n", s)
	}
	fmt.Fprintf(&sb, "log_dir: %q\n", ws.logDir)
	fmt.Fprintf(&sb, "state_dir: %q\n", ws.stateDir)
	sb.WriteString("history:\n")
	fmt.Fprintf(&sb, "  db_path: %q\n", ws.dbPath)
	require.NoError(t, os.WriteFile(ws.configPath, []byte(sb.String()), 0644))

	return ws
}

// executeCommand runs a subcommand under a fresh root and captures its output.
func executeCommand(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), sub, args...)
}

// executeCommandContext is executeCommand with a caller-supplied context.
func executeCommandContext(t *testing.T, ctx context.Context, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	rootCmd := &cobra.Command{Use: "proofrunner", SilenceUsage: true, SilenceErrors: true}
	rootCmd.AddCommand(sub)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{sub.Name()}, args...))

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}
