package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	if err := validateModels(cfg.Models); err != nil {
		return err
	}
	if err := validateLearning(cfg.Learning); err != nil {
		return err
	}
	if err := validateExecution(cfg.Execution); err != nil {
		return err
	}
	return nil
}

func validateModels(models []domain.ModelDefinition) error {
	for _, model := range models {
		if model.Endpoint == "" {
			return fmt.Errorf("models.%s: endpoint must be set", model.Name)
		}
		switch model.APIFormat.SystemMessageMode {
		case "", domain.SystemMessageModeInline, domain.SystemMessageModeSeparate:
		default:
			return fmt.Errorf("models.%s: system_message_mode must be inline|separate, got %s", model.Name, model.APIFormat.SystemMessageMode)
		}
		switch model.APIFormat.ContentWrapper {
		case "", domain.ContentWrapperStandard, domain.ContentWrapperAnthropic:
		default:
			return fmt.Errorf("models.%s: content_wrapper must be standard|anthropic, got %s", model.Name, model.APIFormat.ContentWrapper)
		}
	}
	return nil
}

func validateLearning(learning domain.LearningSettings) error {
	if learning.MaxEntries < 0 {
		return errors.New("learning.max_entries must be >= 0")
	}
	if learning.RetentionDays < 0 {
		return errors.New("learning.retention_days must be >= 0")
	}
	return nil
}

func validateExecution(exec domain.ExecutionSettings) error {
	shell := strings.TrimSpace(exec.Shell)
	if shell == "" || shell == "auto" || strings.HasPrefix(shell, "/") {
		return nil
	}
	return fmt.Errorf("execution.shell must be auto or an absolute path, got %s", exec.Shell)
}
