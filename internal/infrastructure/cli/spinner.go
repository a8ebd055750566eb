package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner displays an animated spinner while a request resolves.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner writing to w. The underlying spinner stays
// silent when w is not a terminal.
func NewSpinner(w io.Writer, message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.s.Start()
}

// Stop stops the spinner animation and clears its line
func (s *Spinner) Stop() {
	s.s.Stop()
}
