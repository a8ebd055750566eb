package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return true
}

// Confirm asks whether to run the suggested command. End of input declines.
func (p *Prompter) Confirm(result domain.CommandResult) (bool, error) {
	if strings.Contains(result.Context, domain.UnsafeMarker) {
		fmt.Fprintln(p.out, "\n⚠️  This command was flagged as potentially unsafe. Review it carefully.")
	}
	fmt.Fprintf(p.out, "\nExecute '%s'? (y/N): ", result.Command)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return helpers.IsAffirmativeResponse(line), nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
