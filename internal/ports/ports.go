// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The resolution core (pattern chain, validator, learning store, AI
// orchestrator) depends only on these abstractions. Adapters in the
// infrastructure layer provide HTTP providers, persistence, process execution,
// context collection and configuration loading.
package ports

import (
	"context"

	"github.com/doeshing/cmdai-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.cmdai/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Resolver maps a request to a command or declines.
// A nil result with a nil error is the normal "no match" outcome.
type Resolver interface {
	CanResolve(tool string) bool
	Resolve(ctx context.Context, req domain.CommandRequest, cctx domain.CommandContext) (*domain.CommandResult, error)
}

// AIProvider is one remote text-generation backend.
// ID is a stable identifier used for priority ranking.
type AIProvider interface {
	ID() string
	ModelName() string
	IsAvailable(ctx context.Context) bool
	Generate(ctx context.Context, tool, query, contextText string) (string, error)
}

// ProviderRegistry exposes the providers configured at process start.
type ProviderRegistry interface {
	Providers() []AIProvider
}

// CommandValidator classifies candidate commands.
type CommandValidator interface {
	Validate(command, tool string) domain.CommandValidationResult
	IsSafe(command string) bool
	DangerousPatterns() []string
}

// LearningService records resolution feedback and serves examples.
type LearningService interface {
	RecordFeedback(ctx context.Context, req domain.CommandRequest, result domain.CommandResult, wasAccepted, wasSuccessful bool) error
	RelevantExamples(ctx context.Context, tool, query string) ([]domain.LearningEntry, error)
	Optimize(ctx context.Context) error
}

// LearningRepository persists the full learning entry set.
type LearningRepository interface {
	Load(ctx context.Context) ([]domain.LearningEntry, error)
	Save(ctx context.Context, entries []domain.LearningEntry) error
	Path() string
}

// ContextCollector supplies the execution context for one invocation.
type ContextCollector interface {
	Collect(ctx context.Context, workingDirectory string) (domain.CommandContext, error)
}

// CommandExecutor runs a resolved command and reports whether it exited zero.
type CommandExecutor interface {
	Execute(ctx context.Context, result domain.CommandResult, cctx domain.CommandContext) (bool, error)
}

// ConfirmationPrompter asks the user whether to run a suggested command.
type ConfirmationPrompter interface {
	Confirm(result domain.CommandResult) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
