// Package rules loads and compiles the standards registry: declarative
// pattern packs embedded as YAML plus function rules for methodology checks.
package rules

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/revu/domain"
)

//go:embed packs/*.yaml
var packFS embed.FS

//go:embed guidance.yaml
var guidanceRaw []byte

// builtinPackID is the pattern set owned by the pattern adapter, not
// selectable as a standard.
const builtinPackID = "builtin"

// packSpec is the YAML shape of one rule pack
type packSpec struct {
	ID    string        `yaml:"id"`
	Name  string        `yaml:"name"`
	Kind  string        `yaml:"kind"`
	Rules []patternSpec `yaml:"rules"`
}

// Engine resolves standard identifiers to compiled rule bundles. Standards
// are compiled once per process and shared read-only afterwards.
type Engine struct {
	once      sync.Once
	loadErr   error
	standards map[string]domain.Standard
	builtin   []domain.Rule
}

// NewEngine creates a rule engine backed by the embedded rule packs
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) load() {
	e.standards = make(map[string]domain.Standard)

	entries, err := packFS.ReadDir("packs")
	if err != nil {
		e.loadErr = fmt.Errorf("reading rule packs: %w", err)
		return
	}
	for _, entry := range entries {
		data, err := packFS.ReadFile("packs/" + entry.Name())
		if err != nil {
			e.loadErr = fmt.Errorf("reading rule pack %s: %w", entry.Name(), err)
			return
		}
		var spec packSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			e.loadErr = fmt.Errorf("parsing rule pack %s: %w", entry.Name(), err)
			return
		}
		std := domain.Standard{
			ID:   spec.ID,
			Name: spec.Name,
			Kind: domain.StandardKind(spec.Kind),
		}
		for _, rs := range spec.Rules {
			source := domain.SourceRules
			if spec.ID == builtinPackID {
				source = domain.SourcePattern
			}
			rule, err := compilePatternRule(rs, source)
			if err != nil {
				e.loadErr = fmt.Errorf("pack %s: %w", spec.ID, err)
				return
			}
			std.Rules = append(std.Rules, rule)
		}
		if spec.ID == builtinPackID {
			e.builtin = std.Rules
			continue
		}
		e.standards[spec.ID] = std
	}

	for _, std := range methodologyStandards() {
		e.standards[std.ID] = std
	}
}

// Compile resolves the given standard identifiers to their rule bundles.
// Unknown identifiers fail the whole compile with an UnknownStandardError
// listing every offending id; nothing is silently skipped.
func (e *Engine) Compile(ids []string) ([]domain.Standard, error) {
	e.once.Do(e.load)
	if e.loadErr != nil {
		return nil, e.loadErr
	}

	var unknown []string
	standards := make([]domain.Standard, 0, len(ids))
	for _, id := range ids {
		std, ok := e.standards[id]
		if !ok || id == builtinPackID {
			unknown = append(unknown, id)
			continue
		}
		standards = append(standards, std)
	}
	if len(unknown) > 0 {
		return nil, &domain.UnknownStandardError{IDs: unknown}
	}
	return standards, nil
}

// RulesFor filters the rules of the compiled standards down to those whose
// appliesTo predicate matches the path. Security rules therefore run only on
// code files while methodology rules run only on process documents.
func (e *Engine) RulesFor(path string, standards []domain.Standard) []domain.Rule {
	var applicable []domain.Rule
	for _, std := range standards {
		for _, rule := range std.Rules {
			if rule.AppliesTo(path) {
				applicable = append(applicable, rule)
			}
		}
	}
	return applicable
}

// BuiltinPatternRules returns the pattern set evaluated by the built-in
// pattern adapter on every review, independent of selected standards.
func (e *Engine) BuiltinPatternRules() ([]domain.Rule, error) {
	e.once.Do(e.load)
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	return e.builtin, nil
}

// Available lists the registered standards sorted by id
func (e *Engine) Available() ([]domain.Standard, error) {
	e.once.Do(e.load)
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	out := make([]domain.Standard, 0, len(e.standards))
	for _, std := range e.standards {
		out = append(out, std)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var (
	guidanceOnce sync.Once
	guidanceErr  error
	guidanceMap  map[string]*domain.Guidance
)

// Guidance returns the educational block for a rule id, or nil if the
// guidance table has no entry for it.
func Guidance(ruleID string) *domain.Guidance {
	guidanceOnce.Do(func() {
		guidanceMap = make(map[string]*domain.Guidance)
		guidanceErr = yaml.Unmarshal(guidanceRaw, &guidanceMap)
	})
	if guidanceErr != nil {
		return nil
	}
	return guidanceMap[ruleID]
}
