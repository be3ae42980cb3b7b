package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/proofrunner/internal/history"
	"github.com/harrison/proofrunner/internal/models"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past verification runs",
		Long: `Show past verification runs recorded in the history database.

Without flags the most recent runs are listed, newest first.

Examples:
  proofrunner history                          # Last 10 runs
  proofrunner history --limit 50
  proofrunner history --run <run-id>           # Per-script results of one run
  proofrunner history --script mlkem_ntt.saw   # Results of one script across runs`,
		Args: cobra.NoArgs,
		RunE: historyCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .proofrunner/config.yaml or config.toml)")
	cmd.Flags().Int("limit", 10, "Maximum number of entries to show")
	cmd.Flags().String("script", "", "Show the results of one script across runs")
	cmd.Flags().String("run", "", "Show the per-script results of one run")

	return cmd
}

// historyCommand implements the history command logic
func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	script, _ := cmd.Flags().GetString("script")
	runID, _ := cmd.Flags().GetString("run")
	if script != "" && runID != "" {
		return fmt.Errorf("cannot use both --script and --run")
	}

	output := cmd.OutOrStdout()
	dbPath := cfg.History.DBPath

	// Check if database exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No runs recorded yet.\n")
		fmt.Fprintf(output, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	switch {
	case runID != "":
		records, err := store.RunResults(ctx, runID)
		if err != nil {
			return fmt.Errorf("load run %s: %w", runID, err)
		}
		if len(records) == 0 {
			return fmt.Errorf("run not found: %s", runID)
		}
		fmt.Fprintf(output, "Run %s (%s)\n\n", runID, records[0].StartedAt.Local().Format("2006-01-02 15:04:05"))
		printScriptRecords(output, records, false)

	case script != "":
		records, err := store.ScriptHistory(ctx, models.Script(script), limit)
		if err != nil {
			return fmt.Errorf("load history for %s: %w", script, err)
		}
		if len(records) == 0 {
			fmt.Fprintf(output, "No results recorded for %s.\n", script)
			return nil
		}
		fmt.Fprintf(output, "History for %s\n\n", script)
		printScriptRecords(output, records, true)

	default:
		runs, err := store.RecentRuns(ctx, limit)
		if err != nil {
			return fmt.Errorf("load recent runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintf(output, "No runs recorded yet.\n")
			return nil
		}
		printRuns(output, runs)
	}

	return nil
}

func printRuns(w io.Writer, runs []history.RunSummary) {
	fmt.Fprintf(w, "%-36s  %-19s  %-7s  %-7s  %s\n", "RUN", "STARTED", "STATUS", "PASSED", "DURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%-36s  %-19s  %s  %-7s  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			statusCell(run.Passed),
			fmt.Sprintf("%d/%d", run.PassCount, run.Total),
			run.Duration.Round(time.Millisecond),
		)
	}
}

func printScriptRecords(w io.Writer, records []history.ScriptRecord, withRun bool) {
	for _, rec := range records {
		exit := "-"
		if rec.ExitCode != nil {
			exit = strconv.Itoa(*rec.ExitCode)
		}

		prefix := fmt.Sprintf("%3d. %-28s", rec.Position+1, rec.Script)
		if withRun {
			prefix = fmt.Sprintf("%s  %.8s", rec.StartedAt.Local().Format("2006-01-02 15:04:05"), rec.RunID)
		}

		line := fmt.Sprintf("%s  %s  %-16s  exit %-3s", prefix, statusCell(rec.Passed), rec.Reason, exit)
		if rec.Error != "" {
			line += "  " + rec.Error
		}
		fmt.Fprintln(w, line)
	}
}

// statusCell renders a fixed-width, colorized PASSED/FAILED cell
func statusCell(passed bool) string {
	if passed {
		return color.New(color.FgGreen).Sprintf("%-7s", models.StatusPassed)
	}
	return color.New(color.FgRed).Sprintf("%-7s", models.StatusFailed)
}
