package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultProviderTimeout bounds each provider probe and generation call
	DefaultProviderTimeout = 30 * time.Second
	// DefaultAvailabilityCacheTTL is how long a provider probe result is reused
	DefaultAvailabilityCacheTTL = 30 * time.Second
	// DefaultCommandTimeout is the timeout for context helper commands
	DefaultCommandTimeout = 2 * time.Second
)

// Learning store constants
const (
	// DefaultLearningMaxEntries caps the number of stored learning entries
	DefaultLearningMaxEntries = 1000
	// DefaultLearningRetentionDays is the horizon after which non-positive entries are pruned
	DefaultLearningRetentionDays = 30
	// MaxRelevantExamples is the number of examples returned by a relevance query
	MaxRelevantExamples = 5
	// MaxPromptExamples is the number of learning examples inlined into a prompt
	MaxPromptExamples = 3
	// MinQueryOverlap is the token overlap ratio an example needs to count as relevant
	MinQueryOverlap = 0.3
	// MaxConfidenceBoost caps the per-pass confidence increase of a repeated command
	MaxConfidenceBoost = 0.2
	// ConfidenceBoostFactor scales a group's success rate into a boost
	ConfidenceBoostFactor = 0.1
)

// Learning backends
const (
	LearningBackendJSON   = "json"
	LearningBackendSQLite = "sqlite"
)

// Provider identifiers
const (
	ProviderIDOllama      = "ollama"
	ProviderIDAzureOpenAI = "azureopenai"
)

// Display
const (
	// DefaultLearningListLimit is the default number of learning entries to display
	DefaultLearningListLimit = 20
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
