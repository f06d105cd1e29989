package domain

// StandardKind distinguishes coding standards from process methodologies
type StandardKind string

const (
	StandardKindStandard    StandardKind = "standard"
	StandardKindMethodology StandardKind = "methodology"
)

// Rule is a single executable review predicate. Implementations must be
// stateless and pure: Evaluate never mutates the unit and is safe to call
// from concurrent reviews.
type Rule interface {
	// ID is the stable rule identifier reported in findings
	ID() string

	// AppliesTo reports whether the rule should run against the given path
	AppliesTo(path string) bool

	// Evaluate runs the rule against a review unit and returns its findings
	Evaluate(unit ReviewUnit) []Finding

	// DefaultSeverity is the severity findings carry unless the rule
	// decides otherwise
	DefaultSeverity() Severity
}

// Standard is a named bundle of rules representing a security, architecture,
// or process convention. Standards are immutable after compilation and may be
// shared read-only across concurrent reviews.
type Standard struct {
	ID    string
	Name  string
	Kind  StandardKind
	Rules []Rule
}

// RuleFunc adapts a pure function into a Rule. Used for checks that need
// custom logic rather than a declarative pattern, e.g. methodology document
// structure checks.
type RuleFunc struct {
	RuleID   string
	Severity Severity
	Applies  func(path string) bool
	Run      func(unit ReviewUnit) []Finding
}

func (r RuleFunc) ID() string { return r.RuleID }

func (r RuleFunc) AppliesTo(path string) bool {
	if r.Applies == nil {
		return true
	}
	return r.Applies(path)
}

func (r RuleFunc) Evaluate(unit ReviewUnit) []Finding {
	if r.Run == nil {
		return nil
	}
	return r.Run(unit)
}

func (r RuleFunc) DefaultSeverity() Severity { return r.Severity }
