package commands

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrLearningDisabled         = "learning is disabled (ai.enable_learning: false)"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoLearningRecorded       = "No learning entries recorded yet."
	MsgClearCancelled           = "Clear cancelled."
)

// Learning display
const (
	TopCommandsLimit = 5
)
