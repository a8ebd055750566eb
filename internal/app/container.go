package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doeshing/cmdai-go/internal/application/ask"
	configapp "github.com/doeshing/cmdai-go/internal/application/config"
	"github.com/doeshing/cmdai-go/internal/application/doctor"
	"github.com/doeshing/cmdai-go/internal/application/resolve"
	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/infrastructure/ai"
	"github.com/doeshing/cmdai-go/internal/infrastructure/config"
	contextcollector "github.com/doeshing/cmdai-go/internal/infrastructure/context"
	"github.com/doeshing/cmdai-go/internal/infrastructure/executor"
	"github.com/doeshing/cmdai-go/internal/infrastructure/learning"
	"github.com/doeshing/cmdai-go/internal/infrastructure/patterns"
	"github.com/doeshing/cmdai-go/internal/infrastructure/security"
	"github.com/doeshing/cmdai-go/internal/pkg/filesystem"
	"github.com/doeshing/cmdai-go/internal/pkg/logger"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.ZapLogger
	Providers      *ai.Registry
	Validator      *security.Validator
	Patterns       *patterns.Chain
	Resolver       *resolve.Orchestrator
	// Learning is nil when learning is disabled in the config.
	Learning      *learning.Store
	AskService    *ask.Service
	DoctorService *doctor.Service

	closers []func() error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := configapp.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgLoader.Path(), err)
	}

	log := logger.New(verbose)
	c := &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
	}

	validator, err := security.NewValidator(cfg.Validator.RulesFile)
	if err != nil {
		log.Warn("validator rules ignored, using built-in signatures", map[string]interface{}{
			"rules_file": cfg.Validator.RulesFile,
			"error":      err.Error(),
		})
		if validator, err = security.NewValidator(""); err != nil {
			return nil, err
		}
	}
	c.Validator = validator

	chain, err := patterns.NewDefaultChain()
	if err != nil {
		return nil, fmt.Errorf("load pattern rules: %w", err)
	}
	c.Patterns = chain

	c.Providers = ai.NewRegistry(cfg, log)
	c.closers = append(c.closers, func() error { c.Providers.Close(); return nil })

	resolver := &resolve.Orchestrator{
		Config:    cfg,
		Providers: c.Providers,
		Validator: validator,
		Fallback:  chain,
		Logger:    log,
	}

	collector := contextcollector.NewBasicCollector()
	askService := &ask.Service{
		ContextCollector: collector,
		Resolver:         resolver,
		Executor:         executor.NewLocalExecutor(cfg.GetExecutionShell(), nil, nil),
		Logger:           log,
		SkipConfirmation: !cfg.Execution.ConfirmBeforeExecute,
	}
	doctorService := &doctor.Service{
		ConfigProvider:   cfgLoader,
		Providers:        c.Providers,
		Validator:        validator,
		ContextCollector: collector,
		Resolver:         resolver,
	}

	if cfg.IsLearningEnabled() {
		store := c.buildLearningStore(ctx, cfg)
		c.Learning = store
		resolver.Learning = store
		askService.Learning = store
		doctorService.LearningPath = store.Path()
	}

	c.Resolver = resolver
	c.AskService = askService
	c.DoctorService = doctorService
	return c, nil
}

// buildLearningStore opens the configured backend. A SQLite database that
// cannot be opened falls back to the JSON file next to it.
func (c *Container) buildLearningStore(ctx context.Context, cfg domain.Config) *learning.Store {
	opts := learning.Options{
		MaxEntries: cfg.GetLearningMaxEntries(),
		Retention:  cfg.GetLearningRetention(),
	}
	path := learningPath(cfg)

	var repo ports.LearningRepository = learning.NewFileRepository(path)
	if cfg.GetLearningBackend() == domain.LearningBackendSQLite {
		sqliteRepo, err := learning.NewSQLiteRepository(path)
		if err != nil {
			jsonPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
			c.Logger.Warn("sqlite learning store unavailable, using json", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			repo = learning.NewFileRepository(jsonPath)
		} else {
			repo = sqliteRepo
			c.closers = append(c.closers, sqliteRepo.Close)
		}
	}
	return learning.NewStore(ctx, repo, c.Logger, opts)
}

// learningPath resolves the store location; the sqlite backend swaps a
// .json extension for .db.
func learningPath(cfg domain.Config) string {
	sqlite := cfg.GetLearningBackend() == domain.LearningBackendSQLite
	path := filesystem.ExpandPath(cfg.Learning.Path)
	if path == "" {
		if sqlite {
			return filesystem.AppPath("learning.db")
		}
		return filesystem.AppPath("learning.json")
	}
	if sqlite && strings.EqualFold(filepath.Ext(path), ".json") {
		return strings.TrimSuffix(path, filepath.Ext(path)) + ".db"
	}
	return path
}

// Close releases background resources and flushes logs.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = c.Logger.Sync()
	return firstErr
}
