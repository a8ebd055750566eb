package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/syntax"

	"github.com/doeshing/cmdai-go/assets"
	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/pkg/filesystem"
	"github.com/doeshing/cmdai-go/internal/ports"
)

const (
	msgEmpty        = "Command cannot be empty"
	msgDangerous    = "Command contains potentially dangerous patterns"
	warnDestructive = "This command may be destructive or unsafe"
)

// Signature describes a regex-based danger rule.
type Signature struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Global      []Signature            `yaml:"global"`
	Tools       map[string][]Signature `yaml:"tools"`
	Invocations map[string]string      `yaml:"invocations"`
}

type compiledSignature struct {
	re  *regexp.Regexp
	sig Signature
}

// Validator implements ports.CommandValidator. It holds only compiled,
// read-only rule tables and is safe for concurrent use.
type Validator struct {
	global      []compiledSignature
	tools       map[string][]compiledSignature
	invocations map[string]string
}

// NewValidator loads the embedded signatures and appends any rules found at
// rulesPath. A missing rules file is not an error.
func NewValidator(rulesPath string) (*Validator, error) {
	var base RulesFile
	if err := yaml.Unmarshal(assets.DefaultValidatorYAML, &base); err != nil {
		return nil, fmt.Errorf("parse default validator rules: %w", err)
	}
	if rulesPath != "" {
		extra, err := loadRules(filesystem.ExpandPath(rulesPath))
		if err != nil {
			return nil, err
		}
		base = merge(base, extra)
	}
	return compile(base)
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rules, nil
		}
		return rules, fmt.Errorf("read validator rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parse validator rules %s: %w", path, err)
	}
	return rules, nil
}

func merge(base, extra RulesFile) RulesFile {
	base.Global = append(base.Global, extra.Global...)
	if base.Tools == nil {
		base.Tools = map[string][]Signature{}
	}
	for tool, sigs := range extra.Tools {
		base.Tools[tool] = append(base.Tools[tool], sigs...)
	}
	if base.Invocations == nil {
		base.Invocations = map[string]string{}
	}
	for tool, token := range extra.Invocations {
		base.Invocations[tool] = token
	}
	return base
}

func compile(rules RulesFile) (*Validator, error) {
	v := &Validator{
		tools:       make(map[string][]compiledSignature, len(rules.Tools)),
		invocations: make(map[string]string, len(rules.Invocations)),
	}
	var err error
	if v.global, err = compileAll(rules.Global); err != nil {
		return nil, err
	}
	for tool, sigs := range rules.Tools {
		compiled, err := compileAll(sigs)
		if err != nil {
			return nil, err
		}
		v.tools[strings.ToLower(tool)] = compiled
	}
	for tool, token := range rules.Invocations {
		v.invocations[strings.ToLower(tool)] = token
	}
	return v, nil
}

func compileAll(sigs []Signature) ([]compiledSignature, error) {
	out := make([]compiledSignature, 0, len(sigs))
	for _, sig := range sigs {
		re, err := regexp.Compile("(?i)" + sig.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile signature %q: %w", sig.Pattern, err)
		}
		out = append(out, compiledSignature{re: re, sig: sig})
	}
	return out, nil
}

// Validate implements ports.CommandValidator.
func (v *Validator) Validate(command, tool string) domain.CommandValidationResult {
	if strings.TrimSpace(command) == "" {
		return domain.CommandValidationResult{IsValid: false, IsSafe: true, Message: msgEmpty}
	}

	result := domain.CommandValidationResult{IsValid: true, IsSafe: true}

	if !v.IsSafe(command) {
		result.IsSafe = false
		result.Message = msgDangerous
		result.Warnings = append(result.Warnings, warnDestructive)
	}

	for _, cs := range v.toolSignatures(tool) {
		if cs.re.MatchString(command) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Command contains %s-specific risky operation", tool))
			break
		}
	}

	if !v.hasValidStructure(command, tool) {
		result.IsValid = false
		result.Message = fmt.Sprintf("Command does not appear to be a valid %s command", tool)
	}

	return result
}

// IsSafe implements ports.CommandValidator.
func (v *Validator) IsSafe(command string) bool {
	return len(v.Matches(command)) == 0
}

// Matches returns every global signature the command trips.
func (v *Validator) Matches(command string) []Signature {
	var hits []Signature
	for _, cs := range v.global {
		if cs.re.MatchString(command) {
			hits = append(hits, cs.sig)
		}
	}
	return hits
}

// DangerousPatterns implements ports.CommandValidator.
func (v *Validator) DangerousPatterns() []string {
	out := make([]string, 0, len(v.global))
	for _, cs := range v.global {
		out = append(out, cs.sig.Pattern)
	}
	return out
}

func (v *Validator) toolSignatures(tool string) []compiledSignature {
	key := strings.ToLower(strings.TrimSpace(tool))
	if sigs, ok := v.tools[key]; ok {
		return sigs
	}
	if token, ok := v.invocations[key]; ok {
		return v.tools[strings.ToLower(token)]
	}
	return nil
}

// hasValidStructure requires the command to begin with the tool's canonical
// binary and, when it parses, the leftmost simple command to be that binary
// with at least one argument and no leading assignments. Unknown tools pass.
func (v *Validator) hasValidStructure(command, tool string) bool {
	token, ok := v.invocations[strings.ToLower(strings.TrimSpace(tool))]
	if !ok {
		return true
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(command)), strings.ToLower(token)+" ") {
		return false
	}
	call, err := leftmostCall(command)
	if err != nil {
		return true
	}
	return call != nil &&
		len(call.Assigns) == 0 &&
		len(call.Args) >= 2 &&
		strings.EqualFold(call.Args[0].Lit(), token)
}

// leftmostCall returns the first simple command of the first statement,
// following the left side of && || and pipes. It is nil when that statement
// is a compound command.
func leftmostCall(command string) (*syntax.CallExpr, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	prog, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, err
	}
	if len(prog.Stmts) == 0 {
		return nil, errors.New("no statement")
	}
	stmt := prog.Stmts[0]
	for {
		bin, ok := stmt.Cmd.(*syntax.BinaryCmd)
		if !ok {
			break
		}
		stmt = bin.X
	}
	call, _ := stmt.Cmd.(*syntax.CallExpr)
	return call, nil
}

var _ ports.CommandValidator = (*Validator)(nil)
