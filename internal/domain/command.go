// Package domain defines the core value types of the command resolution pipeline.
//
// Values in this package are plain data. Resolution results are never mutated
// in place: fallback layers annotate a result by deriving a new value.
package domain

import "strings"

// Provenance markers carried in CommandResult.Context. The ask flow relies on
// them to decide whether an outcome is worth recording as learning feedback.
const (
	ProvenanceGeneratedBy   = "Generated by"
	ProvenancePatternBased  = "(Pattern-based)"
	ProvenanceAIUnavailable = "(AI unavailable, using patterns)"
	UnsafeMarker            = "⚠️ POTENTIALLY UNSAFE"
	UnsafeDescriptionSuffix = "(requires careful review)"
)

// CommandRequest is a single user intent for a target tool.
type CommandRequest struct {
	Tool            string
	Query           string
	IsDirectCommand bool
}

// CommandContext is the execution environment snapshot for one invocation.
type CommandContext struct {
	WorkingDirectory string
	IsGitRepository  bool
	Environment      map[string]string
}

// CommandResult is a resolved command ready to be shown to the user.
type CommandResult struct {
	Command              string
	Description          string
	RequiresConfirmation bool
	Context              string
}

// NewCommandResult builds a result that requires confirmation, which is the
// default for every resolver.
func NewCommandResult(command, description, context string) CommandResult {
	return CommandResult{
		Command:              command,
		Description:          description,
		RequiresConfirmation: true,
		Context:              context,
	}
}

// WithContextSuffix returns a copy whose context has suffix appended.
func (r CommandResult) WithContextSuffix(suffix string) CommandResult {
	r.Context = joinNonEmpty(" ", r.Context, suffix)
	return r
}

// WithDescriptionSuffix returns a copy whose description has suffix appended.
func (r CommandResult) WithDescriptionSuffix(suffix string) CommandResult {
	r.Description = joinNonEmpty(" ", r.Description, suffix)
	return r
}

// HasAIProvenance reports whether an AI provider produced the result.
func (r CommandResult) HasAIProvenance() bool {
	return strings.Contains(r.Context, ProvenanceGeneratedBy)
}

// IsPatternBased reports whether the pattern chain produced the result.
func (r CommandResult) IsPatternBased() bool {
	return strings.Contains(r.Context, ProvenancePatternBased)
}

// ShouldRecordFeedback reports whether the outcome of running this result
// should feed the learning store.
func (r CommandResult) ShouldRecordFeedback() bool {
	return r.HasAIProvenance() || r.IsPatternBased()
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
