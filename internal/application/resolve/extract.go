package resolve

import (
	"fmt"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
)

const commandLabel = "command:"

var proseMarkers = []string{"command is", "you can use", "this will"}

// ExtractCommand pulls the command line out of a raw provider response.
// When every line looks like prose, the whole trimmed response is returned.
func ExtractCommand(response string) string {
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}
		if strings.HasPrefix(trimmed, "$") || strings.HasPrefix(trimmed, ">") || strings.HasPrefix(trimmed, "#") {
			trimmed = strings.TrimSpace(trimmed[1:])
		}
		if strings.HasPrefix(strings.ToLower(trimmed), commandLabel) {
			trimmed = strings.TrimSpace(trimmed[len(commandLabel):])
		}
		if len(trimmed) < 3 || looksLikeProse(trimmed) {
			continue
		}
		return trimmed
	}
	return strings.TrimSpace(response)
}

func looksLikeProse(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range proseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// BuildContextText renders the execution context and up to
// domain.MaxPromptExamples learning examples for the prompt.
func BuildContextText(cctx domain.CommandContext, examples []domain.LearningEntry) string {
	var parts []string
	if cctx.WorkingDirectory != "" {
		parts = append(parts, "Working directory: "+cctx.WorkingDirectory)
	}
	if cctx.IsGitRepository {
		parts = append(parts, "In a Git repository")
	}
	if len(examples) > 0 {
		parts = append(parts, "Similar successful commands:")
		for i, example := range examples {
			if i == domain.MaxPromptExamples {
				break
			}
			parts = append(parts, fmt.Sprintf("'%s' → %s", example.Query, example.Command))
		}
	}
	return strings.Join(parts, ". ")
}
