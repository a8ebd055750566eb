package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdai-go/internal/app"
	"github.com/doeshing/cmdai-go/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"diagnostics"},
		Short:   "Show configuration and provider status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container) error {
	if container.DoctorService == nil {
		return errors.New(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(cmd.Context())

	// Display report even if there were errors
	displayDoctorReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}

	return nil
}

// displayDoctorReport displays the health check report
func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	fmt.Fprintln(out, "=== CmdAI Diagnostics ===")
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}

	if len(report.Providers) > 0 {
		fmt.Fprintln(out, "\nProvider connectivity:")
		for _, status := range report.Providers {
			if status.Available {
				fmt.Fprintf(out, "  %s: available (model %s)\n", status.ID, status.ModelName)
			} else {
				fmt.Fprintf(out, "  %s: unavailable\n", status.ID)
			}
		}
	}

	if len(report.PriorityOrder) > 0 {
		fmt.Fprintln(out, "\nProvider priority order:")
		for i, id := range report.PriorityOrder {
			fmt.Fprintf(out, "  %d. %s\n", i+1, id)
		}
	}

	if report.SelectionTest != nil {
		fmt.Fprintln(out, "\nProvider selection test:")
		fmt.Fprintf(out, "  Selected provider: %s\n", report.SelectionTest.Context)
		fmt.Fprintf(out, "  Generated command: %s\n", report.SelectionTest.Command)
	}
}
