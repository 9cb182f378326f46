package model

import (
	"fmt"
	"strings"

	"blogo/internal/bn"
	"blogo/internal/logging"
	"blogo/internal/values"
)

// Term is an expression over the model's function symbols and
// constants. Terms are immutable; Replace returns the receiver itself
// when nothing changed, so callers can detect no-op substitution by
// pointer identity.
//
// scope maps logically-bound names (e.g. the bound variable of a symbol
// evidence statement, or a function's parameters) to their type names.
type Term interface {
	fmt.Stringer

	// Equal is strict structural equality, not unification.
	Equal(other Term) bool

	// CheckTypesAndScope validates the term against the model's type
	// and scoping rules. Diagnostics go to the model log; the boolean
	// is the only return signal.
	CheckTypesAndScope(m *Model, scope map[string]string) bool

	// Compile resolves the term against the completed model and
	// returns the number of errors encountered. cs is the shared cycle
	// guard threaded through dependency resolution.
	Compile(m *Model, cs *CallStack, scope map[string]string) int

	// Replace substitutes every occurrence of old with repl, returning
	// the receiver unchanged (same pointer) when old does not occur.
	Replace(old, repl Term) Term
}

// Literal is a constant domain value (boolean, number, string).
type Literal struct {
	Value any
}

// NewLiteral wraps a domain value as a term.
func NewLiteral(v any) *Literal { return &Literal{Value: v} }

func (l *Literal) String() string {
	if s, ok := l.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return values.Format(l.Value)
}

func (l *Literal) Equal(other Term) bool {
	o, ok := other.(*Literal)
	return ok && values.Equal(l.Value, o.Value)
}

func (l *Literal) CheckTypesAndScope(m *Model, scope map[string]string) bool { return true }

func (l *Literal) Compile(m *Model, cs *CallStack, scope map[string]string) int { return 0 }

func (l *Literal) Replace(old, repl Term) Term {
	if l.Equal(old) {
		return repl
	}
	return l
}

// SymbolRef is a reference to a named object: a model constant
// (including guaranteed objects and Skolem constants) or a
// logically-bound variable in the enclosing scope.
type SymbolRef struct {
	Name string
}

// NewSymbolRef builds a reference to a named object.
func NewSymbolRef(name string) *SymbolRef { return &SymbolRef{Name: name} }

func (s *SymbolRef) String() string { return s.Name }

func (s *SymbolRef) Equal(other Term) bool {
	o, ok := other.(*SymbolRef)
	return ok && s.Name == o.Name
}

func (s *SymbolRef) CheckTypesAndScope(m *Model, scope map[string]string) bool {
	if _, ok := scope[s.Name]; ok {
		return true
	}
	if _, ok := m.ConstantType(s.Name); ok {
		return true
	}
	logging.ModelError("symbol %q is not in scope", s.Name)
	return false
}

func (s *SymbolRef) Compile(m *Model, cs *CallStack, scope map[string]string) int {
	if _, ok := scope[s.Name]; ok {
		return 0
	}
	if _, ok := m.ConstantType(s.Name); ok {
		return 0
	}
	logging.CompileError("cannot resolve symbol %q", s.Name)
	return 1
}

func (s *SymbolRef) Replace(old, repl Term) Term {
	if s.Equal(old) {
		return repl
	}
	return s
}

// FuncApp applies a function symbol to argument terms, optionally at a
// timestep.
type FuncApp struct {
	Name string
	Args []Term
	Time bn.Timestep

	fn *Function // resolved during Compile
}

// NewFuncApp builds an untimed function application.
func NewFuncApp(name string, args ...Term) *FuncApp {
	return &FuncApp{Name: name, Args: args, Time: bn.NoTime}
}

// NewFuncAppAt builds a function application indexed at timestep t.
func NewFuncAppAt(name string, t bn.Timestep, args ...Term) *FuncApp {
	return &FuncApp{Name: name, Args: args, Time: t}
}

// Func returns the resolved function, nil before a successful Compile.
func (f *FuncApp) Func() *Function { return f.fn }

func (f *FuncApp) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	s := fmt.Sprintf("%s(%s)", f.Name, strings.Join(parts, ", "))
	if f.Time.IsSet() {
		s += f.Time.String()
	}
	return s
}

func (f *FuncApp) Equal(other Term) bool {
	o, ok := other.(*FuncApp)
	if !ok || f.Name != o.Name || f.Time != o.Time || len(f.Args) != len(o.Args) {
		return false
	}
	for i := range f.Args {
		if !f.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (f *FuncApp) CheckTypesAndScope(m *Model, scope map[string]string) bool {
	fn := m.Function(f.Name)
	if fn == nil {
		logging.ModelError("unknown function %q in %s", f.Name, f)
		return false
	}
	if len(f.Args) != len(fn.ArgTypes) {
		logging.ModelError("%s: function %q takes %d argument(s), got %d",
			f, f.Name, len(fn.ArgTypes), len(f.Args))
		return false
	}
	ok := true
	for _, a := range f.Args {
		if !a.CheckTypesAndScope(m, scope) {
			ok = false
		}
	}
	return ok
}

func (f *FuncApp) Compile(m *Model, cs *CallStack, scope map[string]string) int {
	fn := m.Function(f.Name)
	if fn == nil {
		logging.CompileError("cannot resolve function %q in %s", f.Name, f)
		return 1
	}
	errs := fn.Compile(m, cs)
	for _, a := range f.Args {
		errs += a.Compile(m, cs, scope)
	}
	if errs == 0 {
		f.fn = fn
	}
	return errs
}

func (f *FuncApp) Replace(old, repl Term) Term {
	if f.Equal(old) {
		return repl
	}
	changed := false
	args := make([]Term, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.Replace(old, repl)
		if args[i] != a {
			changed = true
		}
	}
	if !changed {
		return f
	}
	return &FuncApp{Name: f.Name, Args: args, Time: f.Time}
}

// GroundArgs returns the canonical string forms of the arguments when
// every argument is a literal or symbol reference. ok is false when any
// argument is itself a compound term.
func (f *FuncApp) GroundArgs() (args []string, ok bool) {
	out := make([]string, len(f.Args))
	for i, a := range f.Args {
		switch t := a.(type) {
		case *Literal:
			out[i] = values.Format(t.Value)
		case *SymbolRef:
			out[i] = t.Name
		default:
			return nil, false
		}
	}
	return out, true
}

// CompareOp is a comparison operator in a condition term.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "!="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// Compare is a boolean condition comparing two terms, used mainly as
// the body of a symbol evidence statement.
type Compare struct {
	Op    CompareOp
	Left  Term
	Right Term
}

// NewCompare builds a comparison condition.
func NewCompare(op CompareOp, left, right Term) *Compare {
	return &Compare{Op: op, Left: left, Right: right}
}

func (c *Compare) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

func (c *Compare) Equal(other Term) bool {
	o, ok := other.(*Compare)
	return ok && c.Op == o.Op && c.Left.Equal(o.Left) && c.Right.Equal(o.Right)
}

func (c *Compare) CheckTypesAndScope(m *Model, scope map[string]string) bool {
	left := c.Left.CheckTypesAndScope(m, scope)
	right := c.Right.CheckTypesAndScope(m, scope)
	return left && right
}

func (c *Compare) Compile(m *Model, cs *CallStack, scope map[string]string) int {
	return c.Left.Compile(m, cs, scope) + c.Right.Compile(m, cs, scope)
}

func (c *Compare) Replace(old, repl Term) Term {
	if c.Equal(old) {
		return repl
	}
	left := c.Left.Replace(old, repl)
	right := c.Right.Replace(old, repl)
	if left == c.Left && right == c.Right {
		return c
	}
	return &Compare{Op: c.Op, Left: left, Right: right}
}
