package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for proofrunner
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proofrunner",
		Short: "Sequential SAW proof runner",
		Long: `Proofrunner runs the SAW verifier over a fixed, ordered list of proof
scripts, one at a time, and reports PASSED or FAILED for each.

A script passes only when the verifier exits with status 0 and prints a
success marker ("Proof succeeded!" or "Verified"). The exit status is 0
when every script passed and 1 otherwise.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error
		SilenceErrors: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
