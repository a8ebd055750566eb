package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// LocalExecutor runs commands on the host shell, streaming output as it arrives.
type LocalExecutor struct {
	shell  string
	stdout io.Writer
	stderr io.Writer
}

// NewLocalExecutor builds a new executor. Nil writers default to the process stdio.
func NewLocalExecutor(shell string, stdout, stderr io.Writer) *LocalExecutor {
	if shell == "" {
		shell = "/bin/bash"
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &LocalExecutor{shell: shell, stdout: stdout, stderr: stderr}
}

// Execute implements ports.CommandExecutor. A non-zero exit is reported as
// (false, nil); errors mean the shell could not be run at all.
func (e *LocalExecutor) Execute(ctx context.Context, result domain.CommandResult, cctx domain.CommandContext) (bool, error) {
	c := exec.CommandContext(ctx, e.shell, "-c", result.Command)
	c.Dir = cctx.WorkingDirectory
	c.Env = overlayEnv(os.Environ(), cctx.Environment)
	c.Stdin = os.Stdin
	c.Stdout = e.stdout
	c.Stderr = e.stderr

	err := c.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &exitErr):
		return false, nil
	default:
		return false, fmt.Errorf("run %s: %w", e.shell, err)
	}
}

// overlayEnv applies overrides on top of base. Keys are emitted in sorted
// order so the child environment is deterministic.
func overlayEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, replaced := overrides[key]; replaced {
			continue
		}
		out = append(out, kv)
	}
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out = append(out, key+"="+overrides[key])
	}
	return out
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
