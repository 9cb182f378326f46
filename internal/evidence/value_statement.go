package evidence

import (
	"fmt"

	"blogo/internal/bn"
	"blogo/internal/logging"
	"blogo/internal/model"
	"blogo/internal/values"
)

// ValueEvidenceStatement fixes the value of a term: obs subject = output.
//
// After a successful compile the statement exposes exactly one
// (observable variable, observed value) pair. When the subject is a
// random function applied to ground arguments, the variable is the
// basic variable for that application; otherwise a derived variable is
// synthesized to represent the term's value.
type ValueEvidenceStatement struct {
	m       *model.Model
	subject model.Term
	output  model.Term

	observedVar   bn.Var
	observedValue any
}

// NewValueEvidence builds a value evidence statement against m. The
// output must be a literal or a symbol reference (an object constant).
func NewValueEvidence(m *model.Model, subject, output model.Term) *ValueEvidenceStatement {
	return &ValueEvidenceStatement{m: m, subject: subject, output: output}
}

// Subject returns the term whose value is fixed.
func (s *ValueEvidenceStatement) Subject() model.Term { return s.subject }

// Output returns the term giving the fixed value.
func (s *ValueEvidenceStatement) Output() model.Term { return s.output }

func (s *ValueEvidenceStatement) String() string {
	return fmt.Sprintf("obs %s = %s", s.subject, s.output)
}

// CheckTypesAndScope validates the statement against the model's type
// and scoping rules. Diagnostics go to the model log.
func (s *ValueEvidenceStatement) CheckTypesAndScope(m *model.Model) bool {
	subject := s.subject.CheckTypesAndScope(m, nil)
	output := s.output.CheckTypesAndScope(m, nil)
	if !s.outputIsFixed() {
		logging.ModelError("%s: output side must be a literal or constant", s)
		return false
	}
	return subject && output
}

// Compile resolves the statement against the completed model and
// returns the number of errors. On zero errors the observed pair is
// available via ObservedVar/ObservedValue.
func (s *ValueEvidenceStatement) Compile(cs *model.CallStack) int {
	errs := s.subject.Compile(s.m, cs, nil)
	errs += s.output.Compile(s.m, cs, nil)
	if !s.outputIsFixed() {
		logging.CompileError("%s: output side must be a literal or constant", s)
		errs++
	}
	if errs > 0 {
		return errs
	}

	s.observedValue = s.fixedOutputValue()
	if fa, ok := s.subject.(*model.FuncApp); ok && fa.Func() != nil && fa.Func().Random {
		if args, ground := fa.GroundArgs(); ground {
			s.observedVar = bn.NewFuncAppVar(fa.Name, args, fa.Time)
			return 0
		}
	}
	s.observedVar = bn.NewDerivedVar(s.subject.String())
	return 0
}

func (s *ValueEvidenceStatement) outputIsFixed() bool {
	switch s.output.(type) {
	case *model.Literal, *model.SymbolRef:
		return true
	}
	return false
}

func (s *ValueEvidenceStatement) fixedOutputValue() any {
	switch t := s.output.(type) {
	case *model.Literal:
		return t.Value
	case *model.SymbolRef:
		return t.Name
	}
	return nil
}

// ObservedVar returns the observable variable, nil before a successful
// compile.
func (s *ValueEvidenceStatement) ObservedVar() bn.Var { return s.observedVar }

// ObservedValue returns the observed value, nil before a successful
// compile.
func (s *ValueEvidenceStatement) ObservedValue() any { return s.observedValue }

// IsDetermined reports whether w already contains enough information to
// decide the statement's truth value.
func (s *ValueEvidenceStatement) IsDetermined(w World) bool {
	if s.observedVar == nil {
		return false
	}
	_, ok := w.Value(s.observedVar)
	return ok
}

// IsTrue reports whether the statement holds in w. Only meaningful when
// IsDetermined holds.
func (s *ValueEvidenceStatement) IsTrue(w World) bool {
	if s.observedVar == nil {
		return false
	}
	cur, ok := w.Value(s.observedVar)
	return ok && values.Equal(cur, s.observedValue)
}

// Replace substitutes old with repl in the statement's terms, returning
// the receiver itself when nothing changed. The returned statement is
// uncompiled.
func (s *ValueEvidenceStatement) Replace(old, repl model.Term) *ValueEvidenceStatement {
	subject := s.subject.Replace(old, repl)
	output := s.output.Replace(old, repl)
	if subject == s.subject && output == s.output {
		return s
	}
	return NewValueEvidence(s.m, subject, output)
}

func (s *ValueEvidenceStatement) ensureSupported(w SupportExpander) error {
	if s.observedVar == nil {
		return fmt.Errorf("evidence: %s not compiled", s)
	}
	if fav, ok := s.observedVar.(*bn.FuncAppVar); ok {
		// Basic evidence variables are pinned to their observed value;
		// the prior log-probability of that value becomes the
		// variable's weight contribution.
		_, err := w.SetBasic(fav.Func(), fav.Args(), fav.Timestep(), s.observedValue)
		return err
	}
	val, err := w.Eval(s.subject, nil)
	if err != nil {
		return fmt.Errorf("evidence: support %s: %w", s, err)
	}
	w.Set(s.observedVar, val, 0)
	return nil
}
