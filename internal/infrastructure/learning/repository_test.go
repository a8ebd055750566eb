package learning

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/cmdai-go/internal/domain"
)

func sampleEntries() []domain.LearningEntry {
	ts := time.Date(2026, 2, 3, 4, 5, 6, 7000, time.UTC)
	return []domain.LearningEntry{
		{ID: "1", Tool: "git", Query: "check status", Command: "git status", Timestamp: ts, WasAccepted: true, WasSuccessful: true, ConfidenceScore: 1},
		{ID: "2", Tool: "az", Query: "list vms", Command: "az vm list --output table", Timestamp: ts.Add(time.Minute), WasAccepted: true, ConfidenceScore: 0.7},
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "learning.json")
	repo := NewFileRepository(path)

	entries, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries, "missing file starts empty")

	require.NoError(t, repo.Save(context.Background(), sampleEntries()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(sampleEntries(), loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFileRepositoryReportsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learning.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileRepository(path).Load(context.Background())
	assert.True(t, errors.Is(err, ErrCorruptStore), "got %v", err)
}

func TestStoreStartsEmptyOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learning.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	s := NewStore(context.Background(), NewFileRepository(path), nil, Options{})
	assert.Empty(t, s.Entries(0))

	require.NoError(t, s.RecordFeedback(context.Background(),
		domain.CommandRequest{Tool: "git", Query: "check status"},
		domain.NewCommandResult("git status", "", ""), true, true))

	reloaded, err := NewFileRepository(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, reloaded, 1)
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "learning.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	entries, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, repo.Save(context.Background(), sampleEntries()))
	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(sampleEntries(), loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, repo.Save(context.Background(), sampleEntries()[:1]))
	loaded, err = repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 1, "save rewrites the full set")
}

func TestSQLiteRepositoryRejectsBadTimestamp(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "learning.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.Save(context.Background(), sampleEntries()))
	_, err = repo.db.Exec(`UPDATE learning_entries SET timestamp = 'last tuesday' WHERE id = '2'`)
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptStore), "got %v", err)
}

func TestSQLiteBackedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learning.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)

	s := NewStore(context.Background(), repo, nil, Options{})
	require.NoError(t, s.RecordFeedback(context.Background(),
		domain.CommandRequest{Tool: "kubectl", Query: "list pods"},
		domain.NewCommandResult("kubectl get pods", "", ""), true, true))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	s = NewStore(context.Background(), reopened, nil, Options{})
	examples, err := s.RelevantExamples(context.Background(), "kubectl", "show pods")
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "kubectl get pods", examples[0].Command)
}
