package patterns

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/cmdai-go/assets"
	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// RulesFile is the YAML schema root for pattern rules.
type RulesFile struct {
	Matchers []MatcherDefinition `yaml:"matchers"`
}

// Chain tries each matcher in declaration order and tags hits as pattern-based.
type Chain struct {
	matchers []*Matcher
}

// NewChain builds a chain from already compiled matchers.
func NewChain(matchers ...*Matcher) *Chain {
	return &Chain{matchers: matchers}
}

// NewDefaultChain builds the chain from the embedded rule tables.
func NewDefaultChain() (*Chain, error) {
	return ParseChain(assets.DefaultPatternsYAML)
}

// ParseChain builds a chain from YAML rule tables.
func ParseChain(data []byte) (*Chain, error) {
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse pattern rules: %w", err)
	}
	chain := &Chain{}
	for _, def := range file.Matchers {
		m, err := NewMatcher(def)
		if err != nil {
			return nil, err
		}
		chain.matchers = append(chain.matchers, m)
	}
	return chain, nil
}

// Matchers returns the registered matchers in priority order.
func (c *Chain) Matchers() []*Matcher {
	out := make([]*Matcher, len(c.matchers))
	copy(out, c.matchers)
	return out
}

// CanResolve implements ports.Resolver.
func (c *Chain) CanResolve(tool string) bool {
	for _, m := range c.matchers {
		if m.CanResolve(tool) {
			return true
		}
	}
	return false
}

// Resolve implements ports.Resolver. No match yields (nil, nil).
func (c *Chain) Resolve(ctx context.Context, req domain.CommandRequest, cctx domain.CommandContext) (*domain.CommandResult, error) {
	for _, m := range c.matchers {
		if !m.CanResolve(req.Tool) {
			continue
		}
		result, err := m.Resolve(ctx, req, cctx)
		if err != nil {
			return nil, err
		}
		if result != nil {
			tagged := result.WithContextSuffix(domain.ProvenancePatternBased)
			return &tagged, nil
		}
	}
	return nil, nil
}

var _ ports.Resolver = (*Chain)(nil)
