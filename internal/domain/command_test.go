package domain_test

import (
	"testing"

	"github.com/doeshing/cmdai-go/internal/domain"
)

func TestCommandResultAnnotationIsNonDestructive(t *testing.T) {
	original := domain.NewCommandResult("git status", "Show the working tree status", "")
	annotated := original.WithContextSuffix(domain.ProvenancePatternBased)

	if original.Context != "" {
		t.Fatalf("original mutated: %q", original.Context)
	}
	if annotated.Context != "(Pattern-based)" {
		t.Fatalf("unexpected context %q", annotated.Context)
	}
	if !annotated.RequiresConfirmation {
		t.Fatal("expected confirmation to be required by default")
	}
}

func TestCommandResultProvenance(t *testing.T) {
	tests := []struct {
		name    string
		context string
		ai      bool
		pattern bool
	}{
		{name: "ai", context: "Generated by codellama:7b", ai: true},
		{name: "pattern", context: "Warning: Not in a Git repository (Pattern-based)", pattern: true},
		{name: "none", context: "Requires Azure CLI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := domain.NewCommandResult("cmd", "desc", tt.context)
			if result.HasAIProvenance() != tt.ai {
				t.Errorf("HasAIProvenance() = %v", result.HasAIProvenance())
			}
			if result.IsPatternBased() != tt.pattern {
				t.Errorf("IsPatternBased() = %v", result.IsPatternBased())
			}
			if result.ShouldRecordFeedback() != (tt.ai || tt.pattern) {
				t.Errorf("ShouldRecordFeedback() = %v", result.ShouldRecordFeedback())
			}
		})
	}
}

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		accepted   bool
		successful bool
		want       float64
	}{
		{true, true, 1.0},
		{true, false, 0.7},
		{false, false, 0.3},
		{false, true, 0.3},
	}

	for _, tt := range tests {
		if got := domain.ConfidenceFor(tt.accepted, tt.successful); got != tt.want {
			t.Errorf("ConfidenceFor(%v, %v) = %v, want %v", tt.accepted, tt.successful, got, tt.want)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	if domain.ClampConfidence(1.3) != 1 {
		t.Error("expected upper clamp")
	}
	if domain.ClampConfidence(-0.1) != 0 {
		t.Error("expected lower clamp")
	}
	if domain.ClampConfidence(0.42) != 0.42 {
		t.Error("expected passthrough")
	}
}
