package domain

import (
	"strings"
	"time"
)

// Confidence scores assigned when feedback is recorded.
const (
	ConfidenceAcceptedSuccessful = 1.0
	ConfidenceAcceptedFailed     = 0.7
	ConfidenceRejected           = 0.3
	ConfidenceUnknown            = 0.5
)

// LearningEntry is one recorded resolution outcome.
type LearningEntry struct {
	ID              string    `json:"id"`
	Tool            string    `json:"tool"`
	Query           string    `json:"query"`
	Command         string    `json:"command"`
	Timestamp       time.Time `json:"timestamp"`
	WasAccepted     bool      `json:"was_accepted"`
	WasSuccessful   bool      `json:"was_successful"`
	ConfidenceScore float64   `json:"confidence_score"`
}

// IsPositive reports whether the entry was both accepted and successful.
func (e LearningEntry) IsPositive() bool {
	return e.WasAccepted && e.WasSuccessful
}

// MatchesTool compares tools case-insensitively.
func (e LearningEntry) MatchesTool(tool string) bool {
	return strings.EqualFold(e.Tool, tool)
}

// ConfidenceFor derives the initial confidence of a feedback event.
func ConfidenceFor(wasAccepted, wasSuccessful bool) float64 {
	switch {
	case wasAccepted && wasSuccessful:
		return ConfidenceAcceptedSuccessful
	case wasAccepted && !wasSuccessful:
		return ConfidenceAcceptedFailed
	case !wasAccepted:
		return ConfidenceRejected
	default:
		return ConfidenceUnknown
	}
}

// ClampConfidence bounds a score to [0,1].
func ClampConfidence(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// LearningStats summarises the learning store contents.
type LearningStats struct {
	Total             int
	Accepted          int
	Successful        int
	AverageConfidence float64
	ByTool            map[string]int
}
