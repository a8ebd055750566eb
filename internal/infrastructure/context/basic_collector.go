package contextcollector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// BasicCollector implements ContextCollector from the filesystem and process environment.
type BasicCollector struct {
	environ func() []string
}

func NewBasicCollector() *BasicCollector {
	return &BasicCollector{environ: os.Environ}
}

// Collect gathers context data. An empty workingDirectory means the process cwd.
func (c *BasicCollector) Collect(_ context.Context, workingDirectory string) (domain.CommandContext, error) {
	wd := workingDirectory
	if wd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return domain.CommandContext{}, fmt.Errorf("working directory: %w", err)
		}
		wd = cwd
	}
	if abs, err := filepath.Abs(wd); err == nil {
		wd = abs
	}

	return domain.CommandContext{
		WorkingDirectory: wd,
		IsGitRepository:  isGitRepository(wd),
		Environment:      c.environment(),
	}, nil
}

func (c *BasicCollector) environment() map[string]string {
	env := map[string]string{}
	for _, kv := range c.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// isGitRepository walks up from dir looking for a .git entry. Worktrees and
// submodules use a .git file rather than a directory.
func isGitRepository(dir string) bool {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

var _ ports.ContextCollector = (*BasicCollector)(nil)
