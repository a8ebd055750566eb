package patterns

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// Rule is one declarative pattern rule.
type Rule struct {
	Pattern     string `yaml:"pattern"`
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

// MatcherDefinition describes the rule table of one tool family.
type MatcherDefinition struct {
	Name                     string   `yaml:"name"`
	Tools                    []string `yaml:"tools"`
	RepositorySensitive      bool     `yaml:"repository_sensitive"`
	OutsideRepositoryWarning string   `yaml:"outside_repository_warning"`
	Context                  string   `yaml:"context"`
	Rules                    []Rule   `yaml:"rules"`
}

type compiledRule struct {
	re   *regexp.Regexp
	rule Rule
}

// Matcher resolves queries for one tool family using an ordered rule table.
// It is stateless after construction and safe for concurrent use.
type Matcher struct {
	def   MatcherDefinition
	tools map[string]struct{}
	rules []compiledRule
}

// NewMatcher compiles a rule table. Patterns are matched case-insensitively.
func NewMatcher(def MatcherDefinition) (*Matcher, error) {
	if len(def.Tools) == 0 {
		return nil, fmt.Errorf("matcher %q: no tools declared", def.Name)
	}
	m := &Matcher{
		def:   def,
		tools: make(map[string]struct{}, len(def.Tools)),
	}
	for _, tool := range def.Tools {
		m.tools[strings.ToLower(strings.TrimSpace(tool))] = struct{}{}
	}
	for i, rule := range def.Rules {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("matcher %q rule %d: %w", def.Name, i+1, err)
		}
		m.rules = append(m.rules, compiledRule{re: re, rule: rule})
	}
	return m, nil
}

// Name returns the matcher's family name.
func (m *Matcher) Name() string { return m.def.Name }

// RuleCount returns the number of compiled rules.
func (m *Matcher) RuleCount() int { return len(m.rules) }

// CanResolve implements ports.Resolver.
func (m *Matcher) CanResolve(tool string) bool {
	_, ok := m.tools[strings.ToLower(strings.TrimSpace(tool))]
	return ok
}

// Resolve implements ports.Resolver. The first matching rule wins.
func (m *Matcher) Resolve(_ context.Context, req domain.CommandRequest, cctx domain.CommandContext) (*domain.CommandResult, error) {
	if !m.CanResolve(req.Tool) {
		return nil, nil
	}
	query := strings.ToLower(req.Query)
	for _, cr := range m.rules {
		groups := cr.re.FindStringSubmatch(query)
		if groups == nil {
			continue
		}
		result := domain.NewCommandResult(expand(cr.rule.Command, groups), cr.rule.Description, m.contextFor(cctx))
		return &result, nil
	}
	return nil, nil
}

func (m *Matcher) contextFor(cctx domain.CommandContext) string {
	if m.def.RepositorySensitive && !cctx.IsGitRepository {
		return m.def.OutsideRepositoryWarning
	}
	return m.def.Context
}

// expand substitutes $N placeholders, highest index first so $1 never
// clobbers the prefix of $10.
func expand(template string, groups []string) string {
	out := template
	for i := len(groups) - 1; i >= 1; i-- {
		out = strings.ReplaceAll(out, "$"+strconv.Itoa(i), strings.TrimSpace(groups[i]))
	}
	return out
}

var _ ports.Resolver = (*Matcher)(nil)
