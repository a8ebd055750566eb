package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/pkg/logger"
)

func TestServiceRunExecutesConfirmedCommand(t *testing.T) {
	result := domain.NewCommandResult("git status", "Show status", "(Pattern-based)")
	executor := &stubExecutor{ok: true}
	learning := &stubLearning{}

	svc := &Service{
		ContextCollector: stubContextCollector{snapshot: domain.CommandContext{WorkingDirectory: "/repo", IsGitRepository: true}},
		Resolver:         stubResolver{result: &result},
		Executor:         executor,
		Prompter:         &stubPrompter{enabled: true, answer: true},
		Learning:         learning,
		Logger:           logger.NewNop(),
	}

	outcome, err := svc.Run(context.Background(), Request{
		Command: domain.CommandRequest{Tool: "git", Query: "show status", IsDirectCommand: true},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !outcome.Prompted || !outcome.Accepted || !outcome.Executed || !outcome.Successful {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if executor.cctx.WorkingDirectory != "/repo" {
		t.Fatalf("executor got context %+v", executor.cctx)
	}
	if len(learning.calls) != 1 || !learning.calls[0].accepted || !learning.calls[0].successful {
		t.Fatalf("unexpected feedback %+v", learning.calls)
	}
	if !outcome.FeedbackRecorded {
		t.Fatal("expected feedback to be recorded")
	}
}

func TestServiceRunRecordsRejection(t *testing.T) {
	result := domain.NewCommandResult("git reset --hard HEAD", "Discard changes", "Generated by codellama:7b")
	executor := &stubExecutor{ok: true}
	learning := &stubLearning{}

	svc := &Service{
		ContextCollector: stubContextCollector{},
		Resolver:         stubResolver{result: &result},
		Executor:         executor,
		Prompter:         &stubPrompter{enabled: true, answer: false},
		Learning:         learning,
		Logger:           logger.NewNop(),
	}

	outcome, err := svc.Run(context.Background(), Request{Command: domain.CommandRequest{Tool: "git", Query: "discard"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Executed || executor.called {
		t.Fatal("rejected command must not run")
	}
	if len(learning.calls) != 1 || learning.calls[0].accepted || learning.calls[0].successful {
		t.Fatalf("unexpected feedback %+v", learning.calls)
	}
}

func TestServiceRunSkipsFeedbackWithoutProvenance(t *testing.T) {
	result := domain.NewCommandResult("az login", "Sign in", "Requires Azure CLI")
	learning := &stubLearning{}

	svc := &Service{
		ContextCollector: stubContextCollector{},
		Resolver:         stubResolver{result: &result},
		Executor:         &stubExecutor{ok: true},
		Prompter:         &stubPrompter{enabled: true, answer: true},
		Learning:         learning,
		Logger:           logger.NewNop(),
	}

	outcome, err := svc.Run(context.Background(), Request{Command: domain.CommandRequest{Tool: "az", Query: "login"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !outcome.Executed {
		t.Fatal("expected execution")
	}
	if len(learning.calls) != 0 || outcome.FeedbackRecorded {
		t.Fatalf("feedback recorded for result without provenance: %+v", learning.calls)
	}
}

func TestServiceRunWithoutConfirmation(t *testing.T) {
	result := domain.NewCommandResult("git status", "Show status", "(Pattern-based)")
	result.RequiresConfirmation = false
	prompter := &stubPrompter{enabled: true, answer: false}
	executor := &stubExecutor{ok: false}
	learning := &stubLearning{}

	svc := &Service{
		ContextCollector: stubContextCollector{},
		Resolver:         stubResolver{result: &result},
		Executor:         executor,
		Prompter:         prompter,
		Learning:         learning,
		Logger:           logger.NewNop(),
	}

	outcome, err := svc.Run(context.Background(), Request{Command: domain.CommandRequest{Tool: "git", Query: "status"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if prompter.asked {
		t.Fatal("prompter should not be consulted")
	}
	if !outcome.Accepted || !outcome.Executed || outcome.Successful {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(learning.calls) != 1 || !learning.calls[0].accepted || learning.calls[0].successful {
		t.Fatalf("unexpected feedback %+v", learning.calls)
	}
}

func TestServiceRunNonInteractiveDoesNotExecute(t *testing.T) {
	result := domain.NewCommandResult("git status", "Show status", "(Pattern-based)")
	executor := &stubExecutor{ok: true}
	learning := &stubLearning{}

	svc := &Service{
		ContextCollector: stubContextCollector{},
		Resolver:         stubResolver{result: &result},
		Executor:         executor,
		Prompter:         &stubPrompter{enabled: false},
		Learning:         learning,
		Logger:           logger.NewNop(),
	}

	outcome, err := svc.Run(context.Background(), Request{Command: domain.CommandRequest{Tool: "git", Query: "status"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Prompted || outcome.Executed || executor.called {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(learning.calls) != 0 {
		t.Fatal("no decision was made, nothing should be recorded")
	}
}

func TestServiceRunPreviewOnly(t *testing.T) {
	result := domain.NewCommandResult("git status", "Show status", "(Pattern-based)")
	prompter := &stubPrompter{enabled: true, answer: true}

	svc := &Service{
		ContextCollector: stubContextCollector{},
		Resolver:         stubResolver{result: &result},
		Executor:         &stubExecutor{ok: true},
		Prompter:         prompter,
		Logger:           logger.NewNop(),
	}

	outcome, err := svc.Run(context.Background(), Request{
		Command:     domain.CommandRequest{Tool: "git", Query: "status"},
		PreviewOnly: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Result == nil || outcome.Result.Command != "git status" {
		t.Fatalf("unexpected result %+v", outcome.Result)
	}
	if prompter.asked || outcome.Executed {
		t.Fatal("preview must not confirm or execute")
	}
}

func TestServiceRunNoMatch(t *testing.T) {
	executor := &stubExecutor{}
	svc := &Service{
		ContextCollector: stubContextCollector{},
		Resolver:         stubResolver{},
		Executor:         executor,
		Logger:           logger.NewNop(),
	}

	outcome, err := svc.Run(context.Background(), Request{Command: domain.CommandRequest{Tool: "git", Query: "xyzzy"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Result != nil || executor.called {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestServiceRunPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		svc  *Service
	}{
		{
			name: "collector",
			svc: &Service{
				ContextCollector: stubContextCollector{err: boom},
				Resolver:         stubResolver{},
				Executor:         &stubExecutor{},
				Logger:           logger.NewNop(),
			},
		},
		{
			name: "resolver",
			svc: &Service{
				ContextCollector: stubContextCollector{},
				Resolver:         stubResolver{err: boom},
				Executor:         &stubExecutor{},
				Logger:           logger.NewNop(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Run(context.Background(), Request{Command: domain.CommandRequest{Tool: "git", Query: "status"}})
			if !errors.Is(err, boom) {
				t.Fatalf("expected wrapped boom, got %v", err)
			}
		})
	}

	if _, err := (&Service{}).Run(context.Background(), Request{}); err == nil {
		t.Fatal("expected dependency error")
	}
}

func TestServiceRunExecutionErrorCountsAsFailure(t *testing.T) {
	result := domain.NewCommandResult("git push", "Push", "(Pattern-based)")
	learning := &stubLearning{}

	svc := &Service{
		ContextCollector: stubContextCollector{},
		Resolver:         stubResolver{result: &result},
		Executor:         &stubExecutor{ok: true, err: errors.New("shell missing")},
		Prompter:         &stubPrompter{enabled: true, answer: true},
		Learning:         learning,
		Logger:           logger.NewNop(),
	}

	outcome, err := svc.Run(context.Background(), Request{Command: domain.CommandRequest{Tool: "git", Query: "push"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !outcome.Executed || outcome.Successful {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(learning.calls) != 1 || learning.calls[0].successful {
		t.Fatalf("unexpected feedback %+v", learning.calls)
	}
}

type stubContextCollector struct {
	snapshot domain.CommandContext
	err      error
}

func (s stubContextCollector) Collect(context.Context, string) (domain.CommandContext, error) {
	return s.snapshot, s.err
}

type stubResolver struct {
	result *domain.CommandResult
	err    error
}

func (s stubResolver) CanResolve(string) bool { return true }

func (s stubResolver) Resolve(context.Context, domain.CommandRequest, domain.CommandContext) (*domain.CommandResult, error) {
	return s.result, s.err
}

type stubExecutor struct {
	ok     bool
	err    error
	called bool
	cctx   domain.CommandContext
}

func (s *stubExecutor) Execute(_ context.Context, _ domain.CommandResult, cctx domain.CommandContext) (bool, error) {
	s.called = true
	s.cctx = cctx
	return s.ok, s.err
}

type stubPrompter struct {
	enabled bool
	answer  bool
	asked   bool
}

func (s *stubPrompter) Confirm(domain.CommandResult) (bool, error) {
	s.asked = true
	return s.answer, nil
}

func (s *stubPrompter) Enabled() bool { return s.enabled }

type feedbackCall struct {
	accepted   bool
	successful bool
}

type stubLearning struct {
	calls []feedbackCall
}

func (s *stubLearning) RecordFeedback(_ context.Context, _ domain.CommandRequest, _ domain.CommandResult, accepted, successful bool) error {
	s.calls = append(s.calls, feedbackCall{accepted: accepted, successful: successful})
	return nil
}

func (s *stubLearning) RelevantExamples(context.Context, string, string) ([]domain.LearningEntry, error) {
	return nil, nil
}

func (s *stubLearning) Optimize(context.Context) error { return nil }

func TestServiceRunPresentsBeforeConfirming(t *testing.T) {
	result := domain.NewCommandResult("git status", "Show status", "(Pattern-based)")
	var order []string
	prompter := &orderedPrompter{order: &order}

	svc := &Service{
		ContextCollector: stubContextCollector{},
		Resolver:         stubResolver{result: &result},
		Executor:         &stubExecutor{ok: true},
		Prompter:         prompter,
		Logger:           logger.NewNop(),
		Presenter: func(r domain.CommandResult) {
			order = append(order, "present:"+r.Command)
		},
	}

	if _, err := svc.Run(context.Background(), Request{Command: domain.CommandRequest{Tool: "git", Query: "status"}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(order) != 2 || order[0] != "present:git status" || order[1] != "confirm" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestServiceRunSkipConfirmationKeepsUnsafeGate(t *testing.T) {
	safe := domain.NewCommandResult("git status", "Show status", "Generated by m")
	unsafe := safe.WithContextSuffix(domain.UnsafeMarker)

	tests := []struct {
		name       string
		result     domain.CommandResult
		wantPrompt bool
	}{
		{name: "safe runs directly", result: safe, wantPrompt: false},
		{name: "unsafe still asks", result: unsafe, wantPrompt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.result
			prompter := &stubPrompter{enabled: true, answer: true}
			svc := &Service{
				ContextCollector: stubContextCollector{},
				Resolver:         stubResolver{result: &result},
				Executor:         &stubExecutor{ok: true},
				Prompter:         prompter,
				Logger:           logger.NewNop(),
				SkipConfirmation: true,
			}

			outcome, err := svc.Run(context.Background(), Request{Command: domain.CommandRequest{Tool: "git", Query: "status"}})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if prompter.asked != tt.wantPrompt || outcome.Prompted != tt.wantPrompt {
				t.Fatalf("asked = %v, prompted = %v, want %v", prompter.asked, outcome.Prompted, tt.wantPrompt)
			}
			if !outcome.Executed {
				t.Fatal("expected execution")
			}
		})
	}
}

type orderedPrompter struct {
	order *[]string
}

func (p *orderedPrompter) Confirm(domain.CommandResult) (bool, error) {
	*p.order = append(*p.order, "confirm")
	return false, nil
}

func (p *orderedPrompter) Enabled() bool { return true }
