// Package evidence compiles user-declared evidence for a probabilistic
// model into a canonical set of observed values over random variables,
// and scores candidate worlds by the log-likelihood of that evidence.
//
// Evidence comes in two forms. Symbol evidence asserts that a stated
// number of objects of some type satisfy a condition, introducing fresh
// Skolem constants for them. Value evidence fixes a term's value to a
// literal. Both reduce, after compilation against a finalized model, to
// (observable variable, observed value) pairs used to condition
// inference and to weight sampled worlds.
//
// Lifecycle: add statements, call Compile once the model is complete,
// then query against worlds. Likelihood queries on non-empty,
// uncompiled evidence return ErrNotCompiled; contradictory observations
// of the same variable are fatal for the whole evidence set.
package evidence

import (
	"fmt"
	"io"
	"math"
	"strings"

	"blogo/internal/bn"
	"blogo/internal/logging"
	"blogo/internal/model"
	"blogo/internal/values"
)

// Statement is the contract both evidence statement kinds satisfy.
type Statement interface {
	fmt.Stringer
	Compile(cs *model.CallStack) int
	CheckTypesAndScope(m *model.Model) bool
	ObservedVar() bn.Var
	ObservedValue() any
	IsDetermined(w World) bool
	IsTrue(w World) bool
}

type observation struct {
	v     bn.Var
	value any
}

// Evidence is the aggregate: ordered statement sequences, the Skolem
// table, and (after Compile) the observed-value map. Not safe for
// concurrent use; an instance belongs to one logical thread of control.
type Evidence struct {
	symbolEvidence []*SymbolEvidenceStatement
	valueEvidence  []*ValueEvidenceStatement

	skolemsByName map[string]*SkolemConstant
	skolems       []*SkolemConstant

	observed map[string]observation
	varOrder []string

	compiled      bool
	contradiction *ContradictionError
}

// New returns an Evidence object with no evidence.
func New() *Evidence {
	return &Evidence{
		skolemsByName: make(map[string]*SkolemConstant),
		observed:      make(map[string]observation),
	}
}

// ConstructAndCompile builds an Evidence from a mixed statement
// collection and compiles it. The error count and any contradiction are
// returned alongside the (always non-nil) Evidence.
func ConstructAndCompile(stmts []Statement) (*Evidence, int, error) {
	e := New()
	for _, s := range stmts {
		switch st := s.(type) {
		case *ValueEvidenceStatement:
			e.AddValueEvidence(st)
		case *SymbolEvidenceStatement:
			e.AddSymbolEvidence(st)
		default:
			return e, 0, fmt.Errorf("evidence: unsupported statement type %T", s)
		}
	}
	n, err := e.Compile()
	return e, n, err
}

// AddSymbolEvidence appends a symbol evidence statement and registers
// the Skolem constants it introduces. Name collisions overwrite the
// by-name table entry (last write wins); the ordered list keeps every
// descriptor.
func (e *Evidence) AddSymbolEvidence(s *SymbolEvidenceStatement) {
	e.symbolEvidence = append(e.symbolEvidence, s)
	for _, c := range s.skolems {
		e.skolems = append(e.skolems, c)
		e.skolemsByName[c.name] = c
	}
	e.compiled = false
}

// AddValueEvidence appends a value evidence statement.
func (e *Evidence) AddValueEvidence(s *ValueEvidenceStatement) {
	e.valueEvidence = append(e.valueEvidence, s)
	e.compiled = false
}

// AddAll merges another Evidence's statements into this one, preserving
// relative order within each kind. If either side was compiled the
// merged object is recompiled; the result of that pass is returned.
func (e *Evidence) AddAll(other *Evidence) (int, error) {
	wasCompiled := e.compiled || other.compiled
	for _, s := range other.symbolEvidence {
		e.AddSymbolEvidence(s)
	}
	for _, s := range other.valueEvidence {
		e.AddValueEvidence(s)
	}
	if wasCompiled {
		return e.Compile()
	}
	return 0, nil
}

// SymbolEvidence returns the symbol evidence statements in insertion
// order.
func (e *Evidence) SymbolEvidence() []*SymbolEvidenceStatement {
	return append([]*SymbolEvidenceStatement(nil), e.symbolEvidence...)
}

// ValueEvidence returns the value evidence statements in insertion
// order.
func (e *Evidence) ValueEvidence() []*ValueEvidenceStatement {
	return append([]*ValueEvidenceStatement(nil), e.valueEvidence...)
}

// SkolemConstant returns the registered descriptor for a name, nil when
// no such Skolem constant was introduced.
func (e *Evidence) SkolemConstant(name string) *SkolemConstant {
	return e.skolemsByName[name]
}

// SkolemConstants returns every introduced descriptor in the order the
// owning statements were added, not filtered for duplicate names.
func (e *Evidence) SkolemConstants() []*SkolemConstant {
	return append([]*SkolemConstant(nil), e.skolems...)
}

// IsEmpty reports whether no statements have been added.
func (e *Evidence) IsEmpty() bool {
	return len(e.symbolEvidence) == 0 && len(e.valueEvidence) == 0
}

// Compiled reports whether Compile has run since the last statement
// addition.
func (e *Evidence) Compiled() bool { return e.compiled }

// CheckTypesAndScope asks every statement to validate itself against
// the model's type and scoping rules. It returns true only if all
// statements pass; per-statement diagnostics go to the model log. The
// pass is idempotent and does not mutate the evidence.
func (e *Evidence) CheckTypesAndScope(m *model.Model) bool {
	correct := true
	for _, s := range e.symbolEvidence {
		if !s.CheckTypesAndScope(m) {
			correct = false
		}
	}
	for _, s := range e.valueEvidence {
		if !s.CheckTypesAndScope(m) {
			correct = false
		}
	}
	return correct
}

// Compile runs the one-time pass that can only be done once the model
// is complete: each statement is resolved against the model (symbol
// evidence first, then value evidence, each in insertion order) with a
// shared call stack guarding against dependency cycles, and each
// error-free statement's observed pair is recorded.
//
// The compiled flag is set unconditionally, reflecting that an attempt
// has been made; callers must check the returned error count. A
// contradiction aborts the pass and is returned as a *ContradictionError.
func (e *Evidence) Compile() (int, error) {
	timer := logging.StartTimer(logging.CategoryCompile, "Compile")
	defer timer.Stop()

	e.compiled = true
	errs := 0
	cs := model.NewCallStack()

	for _, s := range e.symbolEvidence {
		n := s.Compile(cs)
		errs += n
		if n == 0 {
			if err := e.record(s.ObservedVar(), s.ObservedValue(), s); err != nil {
				return errs, err
			}
		}
	}
	for _, s := range e.valueEvidence {
		n := s.Compile(cs)
		errs += n
		if n == 0 {
			if err := e.record(s.ObservedVar(), s.ObservedValue(), s); err != nil {
				return errs, err
			}
		}
	}

	logging.Compile("compiled %d statement(s): %d error(s), %d observed var(s)",
		len(e.symbolEvidence)+len(e.valueEvidence), errs, len(e.varOrder))
	return errs, nil
}

// record stores an observed pair, tolerating duplicate consistent
// observations and rejecting contradictory ones.
func (e *Evidence) record(v bn.Var, value any, source fmt.Stringer) error {
	if prev, ok := e.observed[v.Key()]; ok {
		if !values.Equal(prev.value, value) {
			ce := &ContradictionError{Var: v, Existing: prev.value, Offered: value, Source: source.String()}
			e.contradiction = ce
			logging.EvidenceError("%v", ce)
			return ce
		}
		return nil
	}
	e.observed[v.Key()] = observation{v: v, value: value}
	e.varOrder = append(e.varOrder, v.Key())
	logging.CompileDebug("observed %s = %s", v, values.Format(value))
	return nil
}

// ObservedValue returns the recorded value for a variable.
func (e *Evidence) ObservedValue(v bn.Var) (any, error) {
	obs, ok := e.observed[v.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotObserved, v)
	}
	return obs.value, nil
}

// Vars returns all observed variables, in the order they were first
// recorded.
func (e *Evidence) Vars() []bn.Var {
	out := make([]bn.Var, len(e.varOrder))
	for i, k := range e.varOrder {
		out[i] = e.observed[k].v
	}
	return out
}

// VarsAt returns the observed variables that are temporally indexed and
// match t. Variables with no temporal index match only the NoTime
// sentinel; derived variables are never temporally typed and are
// excluded.
func (e *Evidence) VarsAt(t bn.Timestep) []bn.Var {
	var out []bn.Var
	for _, k := range e.varOrder {
		v := e.observed[k].v
		if _, ok := v.(*bn.FuncAppVar); !ok {
			continue
		}
		if v.Timestep() == t {
			out = append(out, v)
		}
	}
	return out
}

// IsDetermined reports whether the partial world already contains
// enough information to decide the truth value of every statement.
func (e *Evidence) IsDetermined(w World) bool {
	for _, s := range e.symbolEvidence {
		if !s.IsDetermined(w) {
			return false
		}
	}
	for _, s := range e.valueEvidence {
		if !s.IsDetermined(w) {
			return false
		}
	}
	return true
}

// IsTrue reports whether every statement holds in w. Only meaningful
// when IsDetermined holds.
func (e *Evidence) IsTrue(w World) bool {
	for _, s := range e.symbolEvidence {
		if !s.IsTrue(w) {
			return false
		}
	}
	for _, s := range e.valueEvidence {
		if !s.IsTrue(w) {
			return false
		}
	}
	return true
}

// LogProb returns the log-likelihood of the full evidence set in w: per
// observed variable, the world-reported log-probability of its value
// when it matches the observation, and -Inf when it does not.
func (e *Evidence) LogProb(w World) (float64, error) {
	return e.logProb(w, e.Vars())
}

// LogProbAt is LogProb restricted to variables at timestep t.
func (e *Evidence) LogProbAt(w World, t bn.Timestep) (float64, error) {
	return e.logProb(w, e.VarsAt(t))
}

func (e *Evidence) logProb(w World, vars []bn.Var) (float64, error) {
	if e.contradiction != nil {
		return 0, e.contradiction
	}
	if !e.compiled && !e.IsEmpty() {
		logging.EvidenceError("likelihood query on uncompiled evidence")
		return 0, ErrNotCompiled
	}

	sum := 0.0
	for _, v := range vars {
		obs := e.observed[v.Key()]
		cur, ok := w.Value(v)
		if ok && values.Equal(obs.value, cur) {
			sum += w.LogProbOf(v)
		} else {
			// The world disagrees with the observation; the evidence
			// as a whole has probability zero under this world.
			sum += math.Inf(-1)
		}
	}
	return sum, nil
}

// Prob exponentiates LogProb.
func (e *Evidence) Prob(w World) (float64, error) {
	lp, err := e.LogProb(w)
	if err != nil {
		return 0, err
	}
	return math.Exp(lp), nil
}

// ProbAt exponentiates LogProbAt.
func (e *Evidence) ProbAt(w World, t bn.Timestep) (float64, error) {
	lp, err := e.LogProbAt(w, t)
	if err != nil {
		return 0, err
	}
	return math.Exp(lp), nil
}

// SetAndEnsureSupported forces the world to materialize the basic
// variables behind the evidence and expands it until every evidence
// variable is deterministically supported.
func (e *Evidence) SetAndEnsureSupported(w SupportExpander) error {
	if e.contradiction != nil {
		return e.contradiction
	}
	if !e.compiled && !e.IsEmpty() {
		return ErrNotCompiled
	}
	for _, s := range e.symbolEvidence {
		if err := s.ensureSupported(w); err != nil {
			return err
		}
	}
	for _, s := range e.valueEvidence {
		if err := s.ensureSupported(w); err != nil {
			return err
		}
	}
	return nil
}

// Likelihood materializes and supports the evidence variables in w,
// then returns the resulting evidence probability.
func (e *Evidence) Likelihood(w SupportExpander) (float64, error) {
	if err := e.SetAndEnsureSupported(w); err != nil {
		return 0, err
	}
	return e.Prob(w)
}

// Replace produces a new Evidence whose statements have old substituted
// by repl. When no statement changes, the original instance itself is
// returned. When the original was compiled, the new instance is
// compiled before being returned; a contradiction from that pass is
// returned alongside it.
func (e *Evidence) Replace(old, repl model.Term) (*Evidence, error) {
	changed := false
	newSymbol := make([]*SymbolEvidenceStatement, len(e.symbolEvidence))
	for i, s := range e.symbolEvidence {
		newSymbol[i] = s.Replace(old, repl)
		if newSymbol[i] != s {
			changed = true
		}
	}
	newValue := make([]*ValueEvidenceStatement, len(e.valueEvidence))
	for i, s := range e.valueEvidence {
		newValue[i] = s.Replace(old, repl)
		if newValue[i] != s {
			changed = true
		}
	}
	if !changed {
		return e, nil
	}

	ne := New()
	for _, s := range newSymbol {
		ne.AddSymbolEvidence(s)
	}
	for _, s := range newValue {
		ne.AddValueEvidence(s)
	}
	if e.compiled {
		if _, err := ne.Compile(); err != nil {
			return ne, err
		}
	}
	return ne, nil
}

// String renders value evidence followed by symbol evidence, in
// insertion order.
func (e *Evidence) String() string {
	var parts []string
	for _, s := range e.valueEvidence {
		parts = append(parts, s.String())
	}
	for _, s := range e.symbolEvidence {
		parts = append(parts, s.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Print writes each statement on its own line: value evidence first,
// then symbol evidence, each in insertion order. Diagnostic output, not
// machine parseable.
func (e *Evidence) Print(w io.Writer) {
	for _, s := range e.valueEvidence {
		fmt.Fprintln(w, s)
	}
	for _, s := range e.symbolEvidence {
		fmt.Fprintln(w, s)
	}
}
