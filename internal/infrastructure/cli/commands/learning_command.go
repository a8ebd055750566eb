package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdai-go/internal/app"
	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/cmdai-go/internal/infrastructure/learning"
)

// NewLearningCommand creates the learning command with all subcommands
func NewLearningCommand(container *app.Container) *cobra.Command {
	learningCmd := &cobra.Command{
		Use:   "learning",
		Short: "Inspect and maintain the learning store",
	}

	learningCmd.AddCommand(
		newLearningListCommand(container),
		newLearningStatsCommand(container),
		newLearningOptimizeCommand(container),
		newLearningClearCommand(container),
		newLearningExportCommand(container),
	)

	return learningCmd
}

// newLearningListCommand creates the 'learning list' subcommand
func newLearningListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent learning entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := learningStore(container)
			if err != nil {
				return err
			}
			listLearningEntries(cmd.OutOrStdout(), store, limit)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultLearningListLimit, "Max entries to show")
	return cmd
}

// newLearningStatsCommand creates the 'learning stats' subcommand
func newLearningStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show acceptance, success rate and top commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := learningStore(container)
			if err != nil {
				return err
			}
			showLearningStats(cmd.OutOrStdout(), store)
			return nil
		},
	}
}

// newLearningOptimizeCommand creates the 'learning optimize' subcommand
func newLearningOptimizeCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Prune stale entries and boost repeated successful commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := learningStore(container)
			if err != nil {
				return err
			}
			before := store.Stats().Total
			if err := store.Optimize(cmd.Context()); err != nil {
				return fmt.Errorf("failed to optimize learning store: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Optimized learning store: %d -> %d entries\n", before, store.Stats().Total)
			return nil
		},
	}
}

// newLearningClearCommand creates the 'learning clear' subcommand
func newLearningClearCommand(container *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every learning entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := learningStore(container)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes && !helpers.PromptForConfirmation(out, bufio.NewReader(cmd.InOrStdin()), "Clear all learning entries?") {
				fmt.Fprintln(out, MsgClearCancelled)
				return nil
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear learning store: %w", err)
			}
			fmt.Fprintf(out, "Cleared %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// newLearningExportCommand creates the 'learning export' subcommand
func newLearningExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export learning entries as JSON (stdout when no path is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := learningStore(container)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return store.Export(cmd.OutOrStdout())
			}
			return exportLearningToFile(store, args[0])
		},
	}
}

func learningStore(container *app.Container) (*learning.Store, error) {
	if container.Learning == nil {
		return nil, errors.New(ErrLearningDisabled)
	}
	return container.Learning, nil
}

// listLearningEntries lists recent entries, newest first
func listLearningEntries(out io.Writer, store *learning.Store, limit int) {
	entries := store.Entries(limit)
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoLearningRecorded)
		return
	}

	for _, entry := range entries {
		fmt.Fprintf(out, "%s | %s | %.2f | %s | %s\n",
			entry.Timestamp.Format(domain.TimestampFormat),
			entry.Tool,
			entry.ConfidenceScore,
			entry.Query,
			entry.Command)
	}
}

// showLearningStats displays aggregate statistics and top commands
func showLearningStats(out io.Writer, store *learning.Store) {
	stats := store.Stats()
	if stats.Total == 0 {
		fmt.Fprintln(out, MsgNoLearningRecorded)
		return
	}

	acceptance, success := helpers.FeedbackRates(stats)
	fmt.Fprintf(out, "Entries: %d\nAccepted: %d (%.1f%%)\nSuccess rate: %.1f%%\nAverage confidence: %.2f\n",
		stats.Total,
		stats.Accepted,
		acceptance,
		success,
		stats.AverageConfidence)

	fmt.Fprintln(out, "By tool:")
	tools := make([]string, 0, len(stats.ByTool))
	for tool := range stats.ByTool {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	for _, tool := range tools {
		fmt.Fprintf(out, "  %s: %d\n", tool, stats.ByTool[tool])
	}

	entries := store.Entries(0)
	fmt.Fprintln(out, "Top commands:")
	for _, r := range helpers.RankCommands(entries, TopCommandsLimit) {
		fmt.Fprintf(out, "  [%s] %s (%d uses, %d succeeded, confidence %.2f)\n",
			r.Tool, r.Command, r.Uses, r.Successful, r.MeanConfidence)
	}

	if hints := helpers.DeriveUndoHints(entries); len(hints) > 0 {
		fmt.Fprintln(out, "Undo hints:")
		for _, hint := range hints {
			fmt.Fprintf(out, "  - %s\n", hint)
		}
	}
}

// exportLearningToFile writes the JSON export to path
func exportLearningToFile(store *learning.Store, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, domain.SecureFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to export learning entries to %s: %w", path, err)
	}
	if err := store.Export(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to export learning entries to %s: %w", path, err)
	}
	return f.Close()
}
