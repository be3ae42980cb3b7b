package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harrison/proofrunner/internal/verifier"
	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the work directory, verifier and scripts without running",
		Long: `Check that a run could verify every configured script.

Reports whether the work directory is usable, whether the verifier
executable can be found and which scripts are present. The verifier is
never invoked. Exits non-zero when anything is missing.`,
		Args: cobra.NoArgs,
		RunE: checkCommand,
	}

	addConfigFlags(cmd)

	return cmd
}

// checkCommand implements the check command logic
func checkCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ins := verifier.Inspect(runnerOptions(cfg))
	out := cmd.OutOrStdout()

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	if ins.WorkDirErr != nil {
		fmt.Fprintf(out, "%s work dir: %v\n", bad("✗"), ins.WorkDirErr)
	} else {
		fmt.Fprintf(out, "%s work dir: %s\n", ok("✓"), ins.WorkDir)
	}

	if ins.VerifierErr != nil {
		fmt.Fprintf(out, "%s verifier: %v\n", bad("✗"), ins.VerifierErr)
	} else {
		fmt.Fprintf(out, "%s verifier: %s\n", ok("✓"), ins.VerifierPath)
	}

	if len(ins.Scripts) > 0 {
		fmt.Fprintf(out, "\nScripts:\n")
		for _, s := range ins.Scripts {
			if s.Present {
				fmt.Fprintf(out, "  %s %s\n", ok("✓"), s.Script)
			} else {
				fmt.Fprintf(out, "  %s %s (not found)\n", bad("✗"), s.Script)
			}
		}
	}

	if !ins.Ready() {
		if ins.WorkDirErr != nil {
			return ins.WorkDirErr
		}
		if ins.VerifierErr != nil {
			return ins.VerifierErr
		}
		return fmt.Errorf("%d script(s) missing", len(ins.Missing()))
	}

	fmt.Fprintf(out, "\nReady: %d script(s) can be verified\n", len(ins.Scripts))
	return nil
}
