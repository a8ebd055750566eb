package learning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/cmdai-go/internal/domain"
)

type memRepository struct {
	mu      sync.Mutex
	entries []domain.LearningEntry
	loadErr error
	saveErr error
	saves   int
}

func (m *memRepository) Load(context.Context) ([]domain.LearningEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domain.LearningEntry(nil), m.entries...), nil
}

func (m *memRepository) Save(_ context.Context, entries []domain.LearningEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = append([]domain.LearningEntry(nil), entries...)
	return nil
}

func (m *memRepository) Path() string { return "memory" }

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, map[string]interface{})  {}
func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
func (l *recordingLogger) Error(string, error, map[string]interface{}) {}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(t *testing.T, repo *memRepository, clock *fakeClock) *Store {
	t.Helper()
	return NewStore(context.Background(), repo, &recordingLogger{}, Options{Now: clock.Now})
}

func record(t *testing.T, s *Store, tool, query, command string, accepted, successful bool) {
	t.Helper()
	err := s.RecordFeedback(context.Background(),
		domain.CommandRequest{Tool: tool, Query: query},
		domain.NewCommandResult(command, "", ""),
		accepted, successful)
	require.NoError(t, err)
}

func TestRecordFeedbackAssignsConfidence(t *testing.T) {
	repo := &memRepository{}
	s := newTestStore(t, repo, &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})

	record(t, s, "git", "check status", "git status", true, true)
	record(t, s, "git", "push it", "git push", true, false)
	record(t, s, "git", "delete all", "git clean -fdx", false, false)

	entries := s.Entries(0)
	require.Len(t, entries, 3)
	assert.Equal(t, 0.3, entries[0].ConfidenceScore)
	assert.Equal(t, 0.7, entries[1].ConfidenceScore)
	assert.Equal(t, 1.0, entries[2].ConfidenceScore)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, 3, repo.saves, "every mutation persists the full set")
	assert.Len(t, repo.entries, 3)
}

func TestRecordFeedbackEvictsOldestBeyondCapacity(t *testing.T) {
	repo := &memRepository{}
	s := newTestStore(t, repo, &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})

	total := domain.DefaultLearningMaxEntries + 5
	for i := 0; i < total; i++ {
		record(t, s, "git", fmt.Sprintf("query %d", i), "git status", true, true)
	}

	entries := s.Entries(0)
	require.Len(t, entries, domain.DefaultLearningMaxEntries)
	assert.Equal(t, fmt.Sprintf("query %d", total-1), entries[0].Query)
	assert.Equal(t, "query 5", entries[len(entries)-1].Query)
	assert.Len(t, repo.entries, domain.DefaultLearningMaxEntries)
}

func TestRelevantExamplesFiltersAndRanks(t *testing.T) {
	repo := &memRepository{}
	s := newTestStore(t, repo, &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})

	record(t, s, "kubectl", "list pods", "kubectl get pods", true, true)
	record(t, s, "kubectl", "restart deployment", "kubectl rollout restart deployment", true, true)
	record(t, s, "kubectl", "show pods", "kubectl get po", false, false)
	record(t, s, "git", "show pods", "git status", true, true)
	record(t, s, "KUBECTL", "pods please", "kubectl get pods -A", true, true)

	examples, err := s.RelevantExamples(context.Background(), "kubectl", "show pods")
	require.NoError(t, err)

	var commands []string
	for _, e := range examples {
		commands = append(commands, e.Command)
	}
	assert.Equal(t, []string{"kubectl get pods -A", "kubectl get pods"}, commands, "newest first among equal confidence")
}

func TestRelevantExamplesCapsResults(t *testing.T) {
	s := newTestStore(t, &memRepository{}, &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	for i := 0; i < 8; i++ {
		record(t, s, "git", "show log", fmt.Sprintf("git log -%d", i), true, true)
	}
	examples, err := s.RelevantExamples(context.Background(), "git", "show log")
	require.NoError(t, err)
	assert.Len(t, examples, domain.MaxRelevantExamples)
}

func TestRelevantExamplesPrefersConfidence(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &memRepository{entries: []domain.LearningEntry{
		{ID: "a", Tool: "git", Query: "show log", Command: "git log", Timestamp: now, WasAccepted: true, WasSuccessful: true, ConfidenceScore: 0.8},
		{ID: "b", Tool: "git", Query: "show log", Command: "git log --oneline", Timestamp: now.Add(-time.Hour), WasAccepted: true, WasSuccessful: true, ConfidenceScore: 1.0},
	}}
	s := newTestStore(t, repo, &fakeClock{now: now})

	examples, err := s.RelevantExamples(context.Background(), "git", "show log")
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, "b", examples[0].ID)
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{a: "list pods", b: "show pods", want: 0.5},
		{a: "list pods", b: "restart deployment", want: 0},
		{a: "List  Pods", b: "pods list", want: 1},
		{a: "", b: "pods", want: 0},
		{a: "a b c d", b: "a", want: 0.25},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, overlap(tokenize(tt.a), tokenize(tt.b)), 1e-9, "%q vs %q", tt.a, tt.b)
	}
}

func TestOptimizePrunesStaleNonPositiveEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-31 * 24 * time.Hour)
	repo := &memRepository{entries: []domain.LearningEntry{
		{ID: "old-negative", Tool: "git", Command: "git push -f", Timestamp: old, WasAccepted: false, ConfidenceScore: 0.3},
		{ID: "old-failed", Tool: "git", Command: "git pull", Timestamp: old, WasAccepted: true, ConfidenceScore: 0.7},
		{ID: "old-positive", Tool: "git", Command: "git status", Timestamp: old, WasAccepted: true, WasSuccessful: true, ConfidenceScore: 1},
		{ID: "recent-negative", Tool: "git", Command: "git rebase", Timestamp: now.Add(-time.Hour), ConfidenceScore: 0.3},
	}}
	s := NewStore(context.Background(), repo, nil, Options{Now: func() time.Time { return now }})

	require.NoError(t, s.Optimize(context.Background()))

	var ids []string
	for _, e := range repo.entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"old-positive", "recent-negative"}, ids)
}

func TestOptimizeBoostsRepeatedSuccesses(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &memRepository{entries: []domain.LearningEntry{
		{ID: "a", Tool: "git", Query: "status", Command: "git status", Timestamp: now, WasAccepted: true, WasSuccessful: true, ConfidenceScore: 0.6},
		{ID: "b", Tool: "Git", Query: "check", Command: "git status", Timestamp: now, WasAccepted: true, WasSuccessful: true, ConfidenceScore: 0.95},
		{ID: "c", Tool: "git", Query: "log", Command: "git log", Timestamp: now, WasAccepted: true, WasSuccessful: true, ConfidenceScore: 0.6},
		{ID: "d", Tool: "git", Query: "status", Command: "git status", Timestamp: now, WasAccepted: true, ConfidenceScore: 0.7},
	}}
	s := NewStore(context.Background(), repo, nil, Options{Now: func() time.Time { return now }})

	require.NoError(t, s.Optimize(context.Background()))

	scores := map[string]float64{}
	for _, e := range repo.entries {
		scores[e.ID] = e.ConfidenceScore
	}
	assert.InDelta(t, 0.7, scores["a"], 1e-9)
	assert.Equal(t, 1.0, scores["b"], "boost clamps at 1")
	assert.InDelta(t, 0.6, scores["c"], 1e-9, "single member groups are untouched")
	assert.InDelta(t, 0.7, scores["d"], 1e-9, "non-positive entries are not grouped")
}

func TestConfidenceStaysBounded(t *testing.T) {
	repo := &memRepository{}
	s := newTestStore(t, repo, &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	for i := 0; i < 20; i++ {
		record(t, s, "git", "check status", "git status", i%3 != 0, i%2 == 0)
		require.NoError(t, s.Optimize(context.Background()))
	}
	for _, e := range s.Entries(0) {
		assert.GreaterOrEqual(t, e.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, e.ConfidenceScore, 1.0)
	}
}

func TestStoreAbsorbsPersistenceFailures(t *testing.T) {
	logger := &recordingLogger{}
	repo := &memRepository{loadErr: ErrCorruptStore, saveErr: errors.New("read-only filesystem")}
	s := NewStore(context.Background(), repo, logger, Options{})

	record(t, s, "git", "check status", "git status", true, true)
	require.NoError(t, s.Optimize(context.Background()))

	assert.Len(t, s.Entries(0), 1, "in-memory state survives a failed save")
	assert.Equal(t, []string{
		"learning store unreadable, starting empty",
		"learning store not saved",
		"learning store not saved",
	}, logger.warns)
}

func TestStatsAndExport(t *testing.T) {
	s := newTestStore(t, &memRepository{}, &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	record(t, s, "git", "check status", "git status", true, true)
	record(t, s, "az", "list vms", "az vm list", false, false)

	stats := s.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 1, stats.Successful)
	assert.InDelta(t, 0.65, stats.AverageConfidence, 1e-9)
	assert.Equal(t, map[string]int{"git": 1, "az": 1}, stats.ByTool)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))
	var exported []domain.LearningEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	require.Len(t, exported, 2)
	assert.Equal(t, "git status", exported[0].Command)

	require.NoError(t, s.Clear(context.Background()))
	assert.Empty(t, s.Entries(0))
}

func TestStoreSerializesConcurrentFeedback(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := &memRepository{}
	s := newTestStore(t, repo, &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.RecordFeedback(context.Background(),
				domain.CommandRequest{Tool: "git", Query: fmt.Sprintf("status %d", i)},
				domain.NewCommandResult("git status", "", ""), true, true)
			if i%10 == 0 {
				_ = s.Optimize(context.Background())
			}
			_, _ = s.RelevantExamples(context.Background(), "git", "status")
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Entries(0), 40)
	assert.Len(t, repo.entries, 40)
}
