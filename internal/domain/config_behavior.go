package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rich Domain Model: 將設定相關的預設值與一致性檢查封裝在 Config 上

// ProviderOrder returns the configured provider names in priority order.
// An empty list falls back to Ollama, the historical single-provider default.
func (c *Config) ProviderOrder() []string {
	var names []string
	for _, name := range c.AI.Providers {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return []string{ProviderIDOllama}
	}
	return names
}

// ProviderTimeout returns the per-provider call timeout.
func (c *Config) ProviderTimeout() time.Duration {
	if c.AI.TimeoutSeconds <= 0 {
		return DefaultProviderTimeout
	}
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// AvailabilityCacheTTL returns how long probe results are reused.
// A negative setting disables caching.
func (c *Config) AvailabilityCacheTTL() time.Duration {
	switch {
	case c.AI.AvailabilityCacheSeconds < 0:
		return 0
	case c.AI.AvailabilityCacheSeconds == 0:
		return DefaultAvailabilityCacheTTL
	default:
		return time.Duration(c.AI.AvailabilityCacheSeconds) * time.Second
	}
}

// IsAIEnabled checks whether AI providers should be consulted.
func (c *Config) IsAIEnabled() bool {
	return c.AI.Enabled
}

// ShouldFallbackToPatterns checks whether the pattern chain backs up AI resolution.
func (c *Config) ShouldFallbackToPatterns() bool {
	return c.AI.FallbackToPatterns
}

// IsLearningEnabled checks whether feedback should be recorded.
func (c *Config) IsLearningEnabled() bool {
	return c.AI.EnableLearning
}

// GetLearningMaxEntries returns the learning store capacity.
func (c *Config) GetLearningMaxEntries() int {
	if c.Learning.MaxEntries <= 0 {
		return DefaultLearningMaxEntries
	}
	return c.Learning.MaxEntries
}

// GetLearningRetention returns the age after which non-positive entries are pruned.
func (c *Config) GetLearningRetention() time.Duration {
	days := c.Learning.RetentionDays
	if days <= 0 {
		days = DefaultLearningRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetLearningBackend returns the normalised persistence backend name.
func (c *Config) GetLearningBackend() string {
	backend := strings.ToLower(strings.TrimSpace(c.Learning.Backend))
	if backend == "" {
		return LearningBackendJSON
	}
	return backend
}

// GetExecutionShell returns the configured shell for command execution.
func (c *Config) GetExecutionShell() string {
	const defaultShell = "/bin/bash"

	if c.Execution.Shell == "" || c.Execution.Shell == "auto" {
		return defaultShell
	}
	return c.Execution.Shell
}

// FindModelByName searches the generic HTTP providers by name (case-insensitive).
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if strings.EqualFold(model.Name, name) {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a generic provider with the given name exists.
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// ValidateConsistency checks the internal consistency of the configuration.
func (c *Config) ValidateConsistency() error {
	if c.AI.ConfidenceThreshold < 0 || c.AI.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold %.2f must be within [0,1]", c.AI.ConfidenceThreshold)
	}

	if c.AI.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}

	switch c.GetLearningBackend() {
	case LearningBackendJSON, LearningBackendSQLite:
	default:
		return fmt.Errorf("unknown learning backend %q", c.Learning.Backend)
	}

	seen := map[string]bool{}
	for _, model := range c.Models {
		key := strings.ToLower(model.Name)
		if key == "" {
			return fmt.Errorf("model with endpoint %s has no name", model.Endpoint)
		}
		if key == ProviderIDOllama || key == ProviderIDAzureOpenAI {
			return fmt.Errorf("model name %s collides with a built-in provider", model.Name)
		}
		if seen[key] {
			return fmt.Errorf("model %s declared twice", model.Name)
		}
		seen[key] = true
	}

	return nil
}
