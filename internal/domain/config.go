package domain

// Config mirrors ~/.cmdai/config.yaml.
type Config struct {
	ConfigFormatVersion string              `yaml:"config_format_version"`
	AI                  AISettings          `yaml:"ai"`
	Ollama              OllamaSettings      `yaml:"ollama"`
	AzureOpenAI         AzureOpenAISettings `yaml:"azure_openai"`
	Models              []ModelDefinition   `yaml:"models"`
	Learning            LearningSettings    `yaml:"learning"`
	Validator           ValidatorSettings   `yaml:"validator"`
	Execution           ExecutionSettings   `yaml:"execution"`
}

// AISettings controls AI resolution and provider ordering.
type AISettings struct {
	Enabled            bool     `yaml:"enabled"`
	Providers          []string `yaml:"providers"`
	TimeoutSeconds     int      `yaml:"timeout_seconds"`
	FallbackToPatterns bool     `yaml:"fallback_to_patterns"`
	EnableLearning     bool     `yaml:"enable_learning"`
	// ConfidenceThreshold is carried for diagnostics; resolution does not gate on it.
	ConfidenceThreshold      float64 `yaml:"confidence_threshold"`
	AvailabilityCacheSeconds int     `yaml:"availability_cache_seconds"`
}

// OllamaSettings configures the local Ollama provider.
type OllamaSettings struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// AzureOpenAISettings configures the Azure OpenAI provider.
type AzureOpenAISettings struct {
	Endpoint  string `yaml:"endpoint"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// LearningSettings configures the learning store.
type LearningSettings struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	MaxEntries    int    `yaml:"max_entries"`
	RetentionDays int    `yaml:"retention_days"`
}

// ValidatorSettings points at optional extra danger signatures.
type ValidatorSettings struct {
	RulesFile string `yaml:"rules_file"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell                string `yaml:"shell"`
	ConfirmBeforeExecute bool   `yaml:"confirm_before_execute"`
}
