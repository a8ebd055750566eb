package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/pkg/filesystem"
)

func TestLearningPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  domain.Config
		want string
	}{
		{
			name: "json default",
			cfg:  domain.Config{},
			want: filesystem.AppPath("learning.json"),
		},
		{
			name: "sqlite default",
			cfg:  domain.Config{Learning: domain.LearningSettings{Backend: "sqlite"}},
			want: filesystem.AppPath("learning.db"),
		},
		{
			name: "sqlite swaps json extension",
			cfg:  domain.Config{Learning: domain.LearningSettings{Backend: "SQLite", Path: filepath.Join(dir, "learning.json")}},
			want: filepath.Join(dir, "learning.db"),
		},
		{
			name: "explicit path kept",
			cfg:  domain.Config{Learning: domain.LearningSettings{Backend: "json", Path: filepath.Join(dir, "store.json")}},
			want: filepath.Join(dir, "store.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := learningPath(tt.cfg); got != tt.want {
				t.Fatalf("learningPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildContainerToleratesUnknownProviderNames(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CMDAI_CONFIG", filepath.Join(home, "config.yaml"))
	t.Setenv("CMDAI_AI_PROVIDERS", "gemini,ollama")

	c, err := BuildContainer(context.Background(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, []string{"gemini", "ollama"}, c.Config.ProviderOrder())
	ranked := c.Resolver.RankProviders()
	require.NotEmpty(t, ranked)
	assert.Equal(t, domain.ProviderIDOllama, ranked[0].ID())
}
