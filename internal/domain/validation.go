package domain

// CommandValidationResult is the outcome of validating a candidate command.
//
// IsValid and IsSafe are independent: callers reject invalid commands outright
// and surface unsafe ones prominently without rejecting them.
type CommandValidationResult struct {
	IsValid  bool
	IsSafe   bool
	Message  string
	Warnings []string
}

// HasWarnings reports whether any advisory warnings were collected.
func (v CommandValidationResult) HasWarnings() bool {
	return len(v.Warnings) > 0
}
