package cli

import (
	"fmt"
	"io"

	"github.com/doeshing/cmdai-go/internal/application/ask"
	"github.com/doeshing/cmdai-go/internal/domain"
)

// RenderSuggestion prints a resolved command, its description and context.
func RenderSuggestion(out io.Writer, result domain.CommandResult) {
	fmt.Fprintf(out, "Suggested command: %s\n", result.Command)
	fmt.Fprintf(out, "Description: %s\n", result.Description)
	if result.Context != "" {
		fmt.Fprintf(out, "Context: %s\n", result.Context)
	}
}

// RenderOutcome prints what happened after the suggestion was shown.
func RenderOutcome(out io.Writer, req domain.CommandRequest, outcome ask.Outcome, previewOnly bool) {
	switch {
	case outcome.Result == nil:
		fmt.Fprintf(out, "Sorry, I couldn't find a command for '%s' with %s\n", req.Query, req.Tool)
	case previewOnly:
		return
	case outcome.Executed && outcome.Successful:
		fmt.Fprintln(out, "\nCommand completed successfully.")
	case outcome.Executed:
		fmt.Fprintln(out, "\nCommand failed.")
	case outcome.Prompted:
		fmt.Fprintln(out, "Command execution cancelled.")
	default:
		fmt.Fprintln(out, "\nCommand was not executed (no interactive confirmation available).")
	}
}
