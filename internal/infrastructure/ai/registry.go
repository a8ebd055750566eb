package ai

import (
	"context"
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// Registry holds the providers configured at process start, in registration
// order: Ollama, Azure OpenAI, then models from the config file.
type Registry struct {
	providers []ports.AIProvider
	cache     *ttlcache.Cache[string, bool]
}

// NewRegistry builds every configured provider around one shared HTTP client.
func NewRegistry(cfg domain.Config, logger ports.Logger) *Registry {
	client := &http.Client{Timeout: cfg.ProviderTimeout()}
	providers := []ports.AIProvider{
		NewOllamaProvider(cfg.Ollama, client),
		NewAzureOpenAIProvider(cfg.AzureOpenAI, client),
	}
	for _, model := range cfg.Models {
		providers = append(providers, NewModelProvider(model, client))
	}
	if logger != nil {
		for _, p := range providers {
			logger.Debug("registered AI provider", map[string]interface{}{"provider": p.ID(), "model": p.ModelName()})
		}
	}
	return NewRegistryWithProviders(cfg.AvailabilityCacheTTL(), providers...)
}

// NewRegistryWithProviders wraps providers with an availability cache.
// A zero ttl disables caching.
func NewRegistryWithProviders(ttl time.Duration, providers ...ports.AIProvider) *Registry {
	r := &Registry{}
	if ttl > 0 {
		r.cache = ttlcache.New[string, bool](
			ttlcache.WithTTL[string, bool](ttl),
			ttlcache.WithDisableTouchOnHit[string, bool](),
		)
		go r.cache.Start()
	}
	for _, p := range providers {
		if r.cache != nil {
			p = &cachedProvider{AIProvider: p, cache: r.cache}
		}
		r.providers = append(r.providers, p)
	}
	return r
}

// Providers implements ports.ProviderRegistry.
func (r *Registry) Providers() []ports.AIProvider {
	out := make([]ports.AIProvider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Close stops the cache janitor.
func (r *Registry) Close() {
	if r.cache != nil {
		r.cache.Stop()
	}
}

// cachedProvider reuses recent availability probes.
type cachedProvider struct {
	ports.AIProvider
	cache *ttlcache.Cache[string, bool]
}

func (c *cachedProvider) IsAvailable(ctx context.Context) bool {
	if item := c.cache.Get(c.ID()); item != nil {
		return item.Value()
	}
	available := c.AIProvider.IsAvailable(ctx)
	// A probe cut short by the caller says nothing about the provider.
	if ctx.Err() == nil {
		c.cache.Set(c.ID(), available, ttlcache.DefaultTTL)
	}
	return available
}

var _ ports.ProviderRegistry = (*Registry)(nil)
