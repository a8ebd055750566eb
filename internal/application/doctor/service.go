package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/cmdai-go/internal/application/resolve"
	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// SelectionRequest is the sample request used to see which provider answers.
var SelectionRequest = domain.CommandRequest{Tool: "git", Query: "show status", IsDirectCommand: true}

// Service runs configuration and provider diagnostics.
type Service struct {
	ConfigProvider   ports.ConfigProvider
	Providers        ports.ProviderRegistry
	Validator        ports.CommandValidator
	ContextCollector ports.ContextCollector
	Resolver         ports.Resolver
	// LearningPath is reported as-is; empty means learning is off.
	LearningPath string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded format %s", cfg.ConfigFormatVersion)))
	checks = append(checks, aiCheck(cfg), azureCheck(cfg.AzureOpenAI), ollamaCheck(cfg.Ollama))
	checks = append(checks, s.validatorCheck(), s.learningCheck(cfg))

	report := domain.HealthReport{Checks: checks}

	var registered []ports.AIProvider
	if s.Providers != nil {
		registered = s.Providers.Providers()
	}
	report.Providers = probe(ctx, registered, cfg.ProviderTimeout())
	for _, provider := range resolve.RankProviders(registered, cfg.ProviderOrder()) {
		report.PriorityOrder = append(report.PriorityOrder, provider.ID())
	}
	if unknown := resolve.UnmatchedProviderNames(registered, cfg.ProviderOrder()); len(unknown) > 0 {
		report.Checks = append(report.Checks, warn("Provider priority",
			fmt.Sprintf("no provider matches %s; ignored", strings.Join(unknown, ", "))))
	}

	selection, err := s.selectionTest(ctx)
	if err != nil {
		report.Checks = append(report.Checks, warn("Selection test", err.Error()))
		return report, nil
	}
	report.SelectionTest = selection
	if selection == nil {
		report.Checks = append(report.Checks, warn("Selection test", "no provider could resolve the command"))
	} else {
		report.Checks = append(report.Checks, ok("Selection test", selection.Context))
	}
	return report, nil
}

// probe checks every provider concurrently; results keep registration order.
func probe(ctx context.Context, providers []ports.AIProvider, timeout time.Duration) []domain.ProviderStatus {
	statuses := make([]domain.ProviderStatus, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, provider := range providers {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			statuses[i] = domain.ProviderStatus{
				ID:        provider.ID(),
				ModelName: provider.ModelName(),
				Available: provider.IsAvailable(pctx),
			}
			return nil
		})
	}
	_ = g.Wait()
	return statuses
}

func (s *Service) selectionTest(ctx context.Context) (*domain.CommandResult, error) {
	if s.Resolver == nil || s.ContextCollector == nil {
		return nil, fmt.Errorf("resolver not initialized")
	}
	cctx, err := s.ContextCollector.Collect(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("collect context: %w", err)
	}
	return s.Resolver.Resolve(ctx, SelectionRequest, cctx)
}

func aiCheck(cfg domain.Config) domain.HealthCheck {
	details := fmt.Sprintf("providers [%s], fallback to patterns %t, timeout %s, confidence threshold %.2f",
		strings.Join(cfg.ProviderOrder(), ", "),
		cfg.ShouldFallbackToPatterns(),
		cfg.ProviderTimeout(),
		cfg.AI.ConfidenceThreshold,
	)
	if !cfg.IsAIEnabled() {
		return warn("AI", "disabled; "+details)
	}
	return ok("AI", details)
}

func azureCheck(settings domain.AzureOpenAISettings) domain.HealthCheck {
	keyEnv := settings.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "AZURE_OPENAI_API_KEY"
	}
	model := settings.Model
	if model == "" {
		model = "model-router"
	}
	switch {
	case settings.Endpoint == "":
		return warn("Azure OpenAI", "endpoint not configured")
	case envMissing(keyEnv, ""):
		return warn("Azure OpenAI", fmt.Sprintf("%s missing", keyEnv))
	default:
		return ok("Azure OpenAI", fmt.Sprintf("endpoint configured, api key configured (***), model %s", model))
	}
}

func ollamaCheck(settings domain.OllamaSettings) domain.HealthCheck {
	if settings.Endpoint == "" {
		return warn("Ollama", "endpoint not configured")
	}
	return ok("Ollama", fmt.Sprintf("%s, model %s", settings.Endpoint, settings.Model))
}

func (s *Service) validatorCheck() domain.HealthCheck {
	if s.Validator == nil {
		return warn("Validator", "command validator not initialized")
	}
	return ok("Validator", fmt.Sprintf("%d dangerous patterns loaded", len(s.Validator.DangerousPatterns())))
}

func (s *Service) learningCheck(cfg domain.Config) domain.HealthCheck {
	if !cfg.IsLearningEnabled() || s.LearningPath == "" {
		return warn("Learning", "disabled")
	}
	return ok("Learning", fmt.Sprintf("%s backend at %s", cfg.GetLearningBackend(), s.LearningPath))
}

func envMissing(primary, fallback string) bool {
	if primary != "" && os.Getenv(primary) != "" {
		return false
	}
	if fallback != "" && os.Getenv(fallback) != "" {
		return false
	}
	return true
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
