package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// Request is one ask invocation.
type Request struct {
	Command          domain.CommandRequest
	WorkingDirectory string
	// PreviewOnly resolves and reports without confirming or executing.
	PreviewOnly bool
}

// Outcome is what happened to a request.
type Outcome struct {
	// Result is nil when no resolver produced a command.
	Result           *domain.CommandResult
	Context          domain.CommandContext
	Prompted         bool
	Accepted         bool
	Executed         bool
	Successful       bool
	FeedbackRecorded bool
}

// Service orchestrates the ask lifecycle end-to-end.
type Service struct {
	ContextCollector ports.ContextCollector
	Resolver         ports.Resolver
	Executor         ports.CommandExecutor
	Prompter         ports.ConfirmationPrompter
	// Learning is optional; nil disables feedback recording.
	Learning ports.LearningService
	Logger   ports.Logger
	// Presenter, when set, is shown the result before any confirmation.
	Presenter func(domain.CommandResult)
	// SkipConfirmation runs safe results without asking. Results marked
	// unsafe are always confirmed.
	SkipConfirmation bool
}

// Run processes a single natural-language request.
func (s *Service) Run(ctx context.Context, req Request) (Outcome, error) {
	if s.ContextCollector == nil || s.Resolver == nil || s.Executor == nil || s.Logger == nil {
		return Outcome{}, errors.New("ask.Service dependencies not satisfied")
	}

	cctx, err := s.ContextCollector.Collect(ctx, req.WorkingDirectory)
	if err != nil {
		return Outcome{}, fmt.Errorf("collect context: %w", err)
	}
	outcome := Outcome{Context: cctx}

	result, err := s.Resolver.Resolve(ctx, req.Command, cctx)
	if err != nil {
		return outcome, fmt.Errorf("resolve: %w", err)
	}
	if result == nil {
		s.Logger.Info("no command resolved", map[string]interface{}{
			"tool":  req.Command.Tool,
			"query": req.Command.Query,
		})
		return outcome, nil
	}
	outcome.Result = result
	if s.Presenter != nil {
		s.Presenter(*result)
	}

	if req.PreviewOnly {
		return outcome, nil
	}

	accepted, prompted, err := s.decideExecution(*result)
	outcome.Prompted = prompted
	if err != nil {
		return outcome, err
	}
	outcome.Accepted = accepted

	if accepted {
		ok, err := s.Executor.Execute(ctx, *result, cctx)
		outcome.Executed = true
		outcome.Successful = ok && err == nil
		if err != nil {
			s.Logger.Warn("command execution failed", map[string]interface{}{
				"command": result.Command,
				"error":   err.Error(),
			})
		}
	}

	// No decision was made when confirmation was required but nobody could be asked.
	if prompted || accepted {
		outcome.FeedbackRecorded = s.recordFeedback(ctx, req.Command, *result, outcome.Accepted, outcome.Successful)
	}
	return outcome, nil
}

// decideExecution returns (accepted, prompted, err). Without an interactive
// prompter nothing that requires confirmation runs.
func (s *Service) decideExecution(result domain.CommandResult) (bool, bool, error) {
	unsafe := strings.Contains(result.Context, domain.UnsafeMarker)
	if !result.RequiresConfirmation || (s.SkipConfirmation && !unsafe) {
		return true, false, nil
	}
	if s.Prompter == nil || !s.Prompter.Enabled() {
		return false, false, nil
	}
	ok, err := s.Prompter.Confirm(result)
	if err != nil {
		return false, true, fmt.Errorf("confirm: %w", err)
	}
	return ok, true, nil
}

func (s *Service) recordFeedback(ctx context.Context, req domain.CommandRequest, result domain.CommandResult, accepted, successful bool) bool {
	if s.Learning == nil || !result.ShouldRecordFeedback() {
		return false
	}
	if err := s.Learning.RecordFeedback(ctx, req, result, accepted, successful); err != nil {
		s.Logger.Warn("feedback not recorded", map[string]interface{}{"error": err.Error()})
		return false
	}
	return true
}
