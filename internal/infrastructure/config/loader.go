package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/cmdai-go/assets"
	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/pkg/filesystem"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "CMDAI_CONFIG"

// FileLoader loads YAML configuration from ~/.cmdai/config.yaml (overridable via CMDAI_CONFIG).
type FileLoader struct {
	overridePath string
	lookupEnv    func(string) (string, bool)
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, lookupEnv: os.LookupEnv}
}

// Load implements ports.ConfigProvider. The user file is layered over the
// embedded defaults, then environment overrides are applied.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return domain.Config{}, err
	}

	path := l.Path()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := writeDefault(path, false); err != nil {
			return domain.Config{}, err
		}
	case err != nil:
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := l.applyEnv(&cfg); err != nil {
		return domain.Config{}, err
	}
	if err := cfg.ValidateConsistency(); err != nil {
		return domain.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file the loader reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom, ok := l.lookupEnv(EnvConfigPath); ok && custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filesystem.AppPath("config.yaml")
}

// Init writes the default configuration. An existing file is kept unless force is set.
func (l *FileLoader) Init(force bool) (string, error) {
	path := l.Path()
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config already exists at %s", path)
		}
	}
	return path, writeDefault(path, force)
}

// DefaultConfig decodes the embedded default configuration.
func DefaultConfig() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse default config: %w", err)
	}
	return cfg, nil
}

func writeDefault(path string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, domain.SecureFilePermissions)
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if _, err := f.Write(assets.DefaultConfigYAML); err != nil {
		f.Close()
		return fmt.Errorf("write default config: %w", err)
	}
	return f.Close()
}

func (l *FileLoader) applyEnv(cfg *domain.Config) error {
	if err := l.envBool("CMDAI_AI_ENABLED", &cfg.AI.Enabled); err != nil {
		return err
	}
	if err := l.envBool("CMDAI_FALLBACK_TO_PATTERNS", &cfg.AI.FallbackToPatterns); err != nil {
		return err
	}
	if raw, ok := l.env("CMDAI_AI_PROVIDERS"); ok {
		cfg.AI.Providers = splitList(raw)
	}
	if raw, ok := l.env("CMDAI_AI_TIMEOUT"); ok {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("CMDAI_AI_TIMEOUT: %w", err)
		}
		cfg.AI.TimeoutSeconds = seconds
	}
	if raw, ok := l.env("AZURE_OPENAI_ENDPOINT"); ok {
		cfg.AzureOpenAI.Endpoint = raw
	}
	if raw, ok := l.env("AZURE_OPENAI_MODEL"); ok {
		cfg.AzureOpenAI.Model = raw
	}
	if raw, ok := l.env("OLLAMA_ENDPOINT"); ok {
		cfg.Ollama.Endpoint = raw
	}
	if raw, ok := l.env("OLLAMA_MODEL"); ok {
		cfg.Ollama.Model = raw
	}
	return nil
}

func (l *FileLoader) env(key string) (string, bool) {
	raw, ok := l.lookupEnv(key)
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

func (l *FileLoader) envBool(key string, dst *bool) error {
	raw, ok := l.env(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = value
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
