package evidence

import (
	"fmt"
	"strings"

	"blogo/internal/bn"
	"blogo/internal/logging"
	"blogo/internal/model"
	"blogo/internal/values"
)

// SymbolEvidenceStatement asserts that a stated number of objects of a
// type satisfy a condition, introducing one Skolem constant per object:
//
//	obs {Person x : Age(x) > 5} = {S1, S2}
//
// Once compiled the statement exposes one observed pair: a derived
// variable for the cardinality of the satisfying set, observed to the
// number of Skolem constants.
type SymbolEvidenceStatement struct {
	m        *model.Model
	typeName string
	boundVar string
	cond     model.Term // nil means every object of the type qualifies
	skolems  []*SkolemConstant

	observedVar   bn.Var
	observedValue any
}

// NewSymbolEvidence builds a symbol evidence statement over objects of
// typeName. boundVar names the object inside cond; names are the Skolem
// constants introduced for the satisfying objects.
func NewSymbolEvidence(m *model.Model, typeName, boundVar string, cond model.Term, names ...string) *SymbolEvidenceStatement {
	s := &SymbolEvidenceStatement{m: m, typeName: typeName, boundVar: boundVar, cond: cond}
	for _, n := range names {
		s.skolems = append(s.skolems, &SkolemConstant{name: n, typeName: typeName, owner: s})
	}
	return s
}

// TypeName returns the quantified object type.
func (s *SymbolEvidenceStatement) TypeName() string { return s.typeName }

// Condition returns the condition term, nil when unconditioned.
func (s *SymbolEvidenceStatement) Condition() model.Term { return s.cond }

// SkolemConstants returns the constants introduced by this statement,
// in declaration order.
func (s *SymbolEvidenceStatement) SkolemConstants() []*SkolemConstant {
	return append([]*SkolemConstant(nil), s.skolems...)
}

func (s *SymbolEvidenceStatement) setSpec() string {
	if s.cond == nil {
		return fmt.Sprintf("{%s %s}", s.typeName, s.boundVar)
	}
	return fmt.Sprintf("{%s %s : %s}", s.typeName, s.boundVar, s.cond)
}

func (s *SymbolEvidenceStatement) String() string {
	names := make([]string, len(s.skolems))
	for i, c := range s.skolems {
		names[i] = c.name
	}
	return fmt.Sprintf("obs %s = {%s}", s.setSpec(), strings.Join(names, ", "))
}

// CheckTypesAndScope validates the statement against the model. As a
// side effect the Skolem constants are registered as model constants so
// later statements can reference them.
func (s *SymbolEvidenceStatement) CheckTypesAndScope(m *model.Model) bool {
	ok := true
	if m.Type(s.typeName) == nil {
		logging.ModelError("%s: unknown type %q", s, s.typeName)
		ok = false
	}
	s.registerSkolems(m)
	if s.cond != nil {
		scope := map[string]string{s.boundVar: s.typeName}
		if !s.cond.CheckTypesAndScope(m, scope) {
			ok = false
		}
	}
	return ok
}

func (s *SymbolEvidenceStatement) registerSkolems(m *model.Model) {
	for _, c := range s.skolems {
		m.AddConstant(c.name, c.typeName)
	}
}

// Compile resolves the statement against the completed model and
// returns the number of errors.
func (s *SymbolEvidenceStatement) Compile(cs *model.CallStack) int {
	errs := 0
	if s.m.Type(s.typeName) == nil {
		logging.CompileError("%s: cannot resolve type %q", s, s.typeName)
		errs++
	}
	s.registerSkolems(s.m)
	if s.cond != nil {
		scope := map[string]string{s.boundVar: s.typeName}
		errs += s.cond.Compile(s.m, cs, scope)
	}
	if errs > 0 {
		return errs
	}
	s.observedVar = bn.NewDerivedVar("card" + s.setSpec())
	s.observedValue = len(s.skolems)
	return 0
}

// ObservedVar returns the cardinality variable, nil before a successful
// compile.
func (s *SymbolEvidenceStatement) ObservedVar() bn.Var { return s.observedVar }

// ObservedValue returns the observed cardinality, nil before a
// successful compile.
func (s *SymbolEvidenceStatement) ObservedValue() any { return s.observedValue }

// IsDetermined reports whether w already contains enough information to
// decide the statement's truth value.
func (s *SymbolEvidenceStatement) IsDetermined(w World) bool {
	if s.observedVar == nil {
		return false
	}
	_, ok := w.Value(s.observedVar)
	return ok
}

// IsTrue reports whether the statement holds in w. Only meaningful when
// IsDetermined holds.
func (s *SymbolEvidenceStatement) IsTrue(w World) bool {
	if s.observedVar == nil {
		return false
	}
	cur, ok := w.Value(s.observedVar)
	return ok && values.Equal(cur, s.observedValue)
}

// Replace substitutes old with repl in the condition, returning the
// receiver itself when nothing changed. The returned statement is
// uncompiled and owns fresh Skolem descriptors for the same names.
func (s *SymbolEvidenceStatement) Replace(old, repl model.Term) *SymbolEvidenceStatement {
	if s.cond == nil {
		return s
	}
	cond := s.cond.Replace(old, repl)
	if cond == s.cond {
		return s
	}
	names := make([]string, len(s.skolems))
	for i, c := range s.skolems {
		names[i] = c.name
	}
	return NewSymbolEvidence(s.m, s.typeName, s.boundVar, cond, names...)
}

func (s *SymbolEvidenceStatement) ensureSupported(w SupportExpander) error {
	if s.observedVar == nil {
		return fmt.Errorf("evidence: %s not compiled", s)
	}
	n, err := w.CountSatisfying(s.typeName, s.boundVar, s.cond)
	if err != nil {
		return fmt.Errorf("evidence: support %s: %w", s, err)
	}
	w.Set(s.observedVar, n, 0)
	return nil
}
