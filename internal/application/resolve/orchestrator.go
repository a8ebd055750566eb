package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// Orchestrator resolves requests through the configured AI providers and
// falls back to the pattern chain. It satisfies ports.Resolver.
type Orchestrator struct {
	Config    domain.Config
	Providers ports.ProviderRegistry
	Validator ports.CommandValidator
	Learning  ports.LearningService
	Fallback  ports.Resolver
	Logger    ports.Logger
}

// CanResolve implements ports.Resolver. Any tool may be attempted.
func (o *Orchestrator) CanResolve(string) bool { return true }

// Resolve implements ports.Resolver. Provider failures are absorbed; a nil
// result with a nil error means nothing could resolve the request.
func (o *Orchestrator) Resolve(ctx context.Context, req domain.CommandRequest, cctx domain.CommandContext) (*domain.CommandResult, error) {
	if o.Validator == nil || o.Logger == nil {
		return nil, errors.New("resolve.Orchestrator dependencies not satisfied")
	}

	if o.Config.IsAIEnabled() && o.Providers != nil {
		if result := o.resolveWithProviders(ctx, req, cctx); result != nil {
			return result, nil
		}
	}

	return o.resolveWithPatterns(ctx, req, cctx)
}

// RankProviders orders the registry by the configured names. Each name picks
// the first unclaimed provider whose ID contains it (case-insensitive); the
// rest follow in registration order.
func (o *Orchestrator) RankProviders() []ports.AIProvider {
	if o.Providers == nil {
		return nil
	}
	return RankProviders(o.Providers.Providers(), o.Config.ProviderOrder())
}

// RankProviders is the ranking function behind Orchestrator.RankProviders.
func RankProviders(registered []ports.AIProvider, names []string) []ports.AIProvider {
	ordered := make([]ports.AIProvider, 0, len(registered))
	claimed := make([]bool, len(registered))
	for _, name := range names {
		needle := strings.ToLower(strings.TrimSpace(name))
		if needle == "" {
			continue
		}
		for i, p := range registered {
			if claimed[i] || !strings.Contains(strings.ToLower(p.ID()), needle) {
				continue
			}
			claimed[i] = true
			ordered = append(ordered, p)
			break
		}
	}
	for i, p := range registered {
		if !claimed[i] {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// UnmatchedProviderNames returns the configured names that no registered
// provider ID contains. Ranking ignores them.
func UnmatchedProviderNames(registered []ports.AIProvider, names []string) []string {
	var unmatched []string
	for _, name := range names {
		needle := strings.ToLower(strings.TrimSpace(name))
		if needle == "" {
			continue
		}
		found := false
		for _, p := range registered {
			if strings.Contains(strings.ToLower(p.ID()), needle) {
				found = true
				break
			}
		}
		if !found {
			unmatched = append(unmatched, name)
		}
	}
	return unmatched
}

func (o *Orchestrator) resolveWithProviders(ctx context.Context, req domain.CommandRequest, cctx domain.CommandContext) *domain.CommandResult {
	for _, provider := range o.RankProviders() {
		result, err := o.tryProvider(ctx, provider, req, cctx)
		if err != nil {
			o.Logger.Warn("provider skipped", map[string]interface{}{
				"provider": provider.ID(),
				"tool":     req.Tool,
				"error":    err.Error(),
			})
			continue
		}
		o.Logger.Debug("provider resolved command", map[string]interface{}{
			"provider": provider.ID(),
			"command":  result.Command,
		})
		return result
	}
	return nil
}

func (o *Orchestrator) tryProvider(ctx context.Context, provider ports.AIProvider, req domain.CommandRequest, cctx domain.CommandContext) (*domain.CommandResult, error) {
	timeout := o.Config.ProviderTimeout()

	probeCtx, cancelProbe := context.WithTimeout(ctx, timeout)
	available := provider.IsAvailable(probeCtx)
	cancelProbe()
	if !available {
		return nil, domain.ErrProviderUnavailable
	}

	contextText := BuildContextText(cctx, o.relevantExamples(ctx, req))

	genCtx, cancelGen := context.WithTimeout(ctx, timeout)
	raw, err := provider.Generate(genCtx, req.Tool, req.Query, contextText)
	cancelGen()
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	command := ExtractCommand(raw)
	if command == "" {
		return nil, domain.ErrEmptyCommand
	}

	validation := o.Validator.Validate(command, req.Tool)
	if !validation.IsValid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCommand, validation.Message)
	}

	result := annotate(
		domain.NewCommandResult(command, fmt.Sprintf("AI-generated %s command", req.Tool), domain.ProvenanceGeneratedBy+" "+provider.ModelName()),
		validation,
	)
	return &result, nil
}

func (o *Orchestrator) relevantExamples(ctx context.Context, req domain.CommandRequest) []domain.LearningEntry {
	if o.Learning == nil || !o.Config.IsLearningEnabled() {
		return nil
	}
	examples, err := o.Learning.RelevantExamples(ctx, req.Tool, req.Query)
	if err != nil {
		o.Logger.Warn("learning examples unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return examples
}

func (o *Orchestrator) resolveWithPatterns(ctx context.Context, req domain.CommandRequest, cctx domain.CommandContext) (*domain.CommandResult, error) {
	if !o.Config.ShouldFallbackToPatterns() || o.Fallback == nil || !o.Fallback.CanResolve(req.Tool) {
		return nil, nil
	}
	result, err := o.Fallback.Resolve(ctx, req, cctx)
	if err != nil || result == nil {
		return nil, err
	}
	o.Logger.Debug("resolved with patterns", map[string]interface{}{"tool": req.Tool, "command": result.Command})
	annotated := result.WithContextSuffix(domain.ProvenanceAIUnavailable)
	return &annotated, nil
}

func annotate(result domain.CommandResult, validation domain.CommandValidationResult) domain.CommandResult {
	if !validation.IsSafe {
		result = result.WithContextSuffix(domain.UnsafeMarker).WithDescriptionSuffix(domain.UnsafeDescriptionSuffix)
	}
	if validation.HasWarnings() {
		result = result.WithContextSuffix("| Warnings: " + strings.Join(validation.Warnings, ", "))
	}
	return result
}

var _ ports.Resolver = (*Orchestrator)(nil)
