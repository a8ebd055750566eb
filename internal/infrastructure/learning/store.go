package learning

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// Options tunes a Store. Zero values fall back to package defaults.
type Options struct {
	MaxEntries int
	Retention  time.Duration
	Now        func() time.Time
	NewID      func() string
}

// Store is the single owner of learning state. Every read and write runs
// under one mutex so rescoring never interleaves with feedback recording.
type Store struct {
	mu         sync.Mutex
	repo       ports.LearningRepository
	logger     ports.Logger
	entries    []domain.LearningEntry
	maxEntries int
	retention  time.Duration
	now        func() time.Time
	newID      func() string
}

// NewStore loads persisted entries from repo. A corrupt or unreadable store
// starts empty.
func NewStore(ctx context.Context, repo ports.LearningRepository, logger ports.Logger, opts Options) *Store {
	s := &Store{
		repo:       repo,
		logger:     logger,
		maxEntries: opts.MaxEntries,
		retention:  opts.Retention,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if s.maxEntries <= 0 {
		s.maxEntries = domain.DefaultLearningMaxEntries
	}
	if s.retention <= 0 {
		s.retention = time.Duration(domain.DefaultLearningRetentionDays) * 24 * time.Hour
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}

	entries, err := repo.Load(ctx)
	if err != nil {
		s.warn("learning store unreadable, starting empty", err)
		entries = nil
	}
	s.entries = entries
	return s
}

// RecordFeedback implements ports.LearningService.
func (s *Store) RecordFeedback(ctx context.Context, req domain.CommandRequest, result domain.CommandResult, wasAccepted, wasSuccessful bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, domain.LearningEntry{
		ID:              s.newID(),
		Tool:            req.Tool,
		Query:           req.Query,
		Command:         result.Command,
		Timestamp:       s.now().UTC(),
		WasAccepted:     wasAccepted,
		WasSuccessful:   wasSuccessful,
		ConfidenceScore: domain.ConfidenceFor(wasAccepted, wasSuccessful),
	})
	if overflow := len(s.entries) - s.maxEntries; overflow > 0 {
		s.entries = append([]domain.LearningEntry(nil), s.entries[overflow:]...)
	}
	s.persistLocked(ctx)
	return nil
}

// RelevantExamples implements ports.LearningService.
func (s *Store) RelevantExamples(_ context.Context, tool, query string) ([]domain.LearningEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	words := tokenize(query)
	var matches []domain.LearningEntry
	for _, entry := range s.entries {
		if !entry.MatchesTool(tool) || !entry.IsPositive() {
			continue
		}
		if overlap(words, tokenize(entry.Query)) < domain.MinQueryOverlap {
			continue
		}
		matches = append(matches, entry)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].ConfidenceScore != matches[j].ConfidenceScore {
			return matches[i].ConfidenceScore > matches[j].ConfidenceScore
		}
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})
	if len(matches) > domain.MaxRelevantExamples {
		matches = matches[:domain.MaxRelevantExamples]
	}
	return matches, nil
}

// Optimize implements ports.LearningService: prune stale non-positive
// entries, then boost commands that repeatedly succeeded for a tool.
func (s *Store) Optimize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().Add(-s.retention)
	kept := s.entries[:0:0]
	for _, entry := range s.entries {
		if entry.Timestamp.Before(cutoff) && !entry.IsPositive() {
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept

	type groupKey struct{ tool, command string }
	groups := map[groupKey][]int{}
	for i, entry := range s.entries {
		if !entry.IsPositive() {
			continue
		}
		key := groupKey{tool: strings.ToLower(entry.Tool), command: entry.Command}
		groups[key] = append(groups[key], i)
	}
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		successful := 0
		for _, i := range members {
			if s.entries[i].WasSuccessful {
				successful++
			}
		}
		rate := float64(successful) / float64(len(members))
		boost := rate * domain.ConfidenceBoostFactor
		if boost > domain.MaxConfidenceBoost {
			boost = domain.MaxConfidenceBoost
		}
		for _, i := range members {
			s.entries[i].ConfidenceScore = domain.ClampConfidence(s.entries[i].ConfidenceScore + boost)
		}
	}

	s.persistLocked(ctx)
	return nil
}

// Entries returns up to limit of the most recent entries, newest first.
// A non-positive limit returns everything.
func (s *Store) Entries(limit int) []domain.LearningEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LearningEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Stats summarises the stored entries.
func (s *Store) Stats() domain.LearningStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.LearningStats{Total: len(s.entries), ByTool: map[string]int{}}
	var sum float64
	for _, entry := range s.entries {
		if entry.WasAccepted {
			stats.Accepted++
		}
		if entry.WasSuccessful {
			stats.Successful++
		}
		sum += entry.ConfidenceScore
		stats.ByTool[strings.ToLower(entry.Tool)]++
	}
	if stats.Total > 0 {
		stats.AverageConfidence = sum / float64(stats.Total)
	}
	return stats
}

// Clear drops every entry and persists the empty set.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return s.repo.Save(ctx, nil)
}

// Export writes all entries, oldest first, as a JSON array.
func (s *Store) Export(w io.Writer) error {
	s.mu.Lock()
	snapshot := append([]domain.LearningEntry{}, s.entries...)
	s.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}

// Path returns the backing store location.
func (s *Store) Path() string {
	return s.repo.Path()
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := s.repo.Save(ctx, s.entries); err != nil {
		s.warn("learning store not saved", err)
	}
}

func (s *Store) warn(msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, map[string]interface{}{"path": s.repo.Path(), "error": err.Error()})
}

func tokenize(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// overlap is |a ∩ b| / max(|a|, |b|).
func overlap(a, b map[string]struct{}) float64 {
	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	if larger == 0 {
		return 0
	}
	shared := 0
	for word := range a {
		if _, ok := b[word]; ok {
			shared++
		}
	}
	return float64(shared) / float64(larger)
}

var _ ports.LearningService = (*Store)(nil)
