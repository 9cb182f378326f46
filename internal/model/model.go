// Package model defines the probabilistic model that evidence is
// compiled against: object types with guaranteed objects, random and
// non-random function symbols with finite-support distributions, and
// the term language used by evidence statements. It also provides the
// insertion-ordered CallStack used as the cycle guard during
// resolution.
package model

import (
	"fmt"
	"strings"

	"blogo/internal/logging"
)

// Type is a user-declared object type. Guaranteed objects exist in
// every possible world and are registered as constants of the type.
type Type struct {
	Name       string
	Guaranteed []string
}

// Function is a function symbol of the model. A random function maps
// ground arguments to a random variable with the given prior. A
// non-random function is defined either by a fixed interpretation table
// or by a body term over its parameters.
type Function struct {
	Name     string
	Params   []string // parameter names, usable in Body; len == len(ArgTypes)
	ArgTypes []string
	RetType  string
	Random   bool

	Prior  *Distribution  // random functions
	Body   Term           // non-random derived functions
	Interp map[string]any // non-random fixed table, keyed by comma-joined canonical args

	compiled bool
}

// Compile resolves the function against the model, compiling a derived
// body if present. cs guards against cyclic definitions: a function
// whose resolution revisits its own identifier reports one error.
func (f *Function) Compile(m *Model, cs *CallStack) int {
	if f.compiled {
		return 0
	}
	id := "func:" + f.Name
	if !cs.Push(id) {
		logging.CompileError("cyclic dependency resolving %q: %s",
			f.Name, strings.Join(append(cs.Trace(), id), " -> "))
		return 1
	}
	defer cs.Pop(id)

	errs := 0
	if f.Random && f.Prior == nil {
		logging.CompileError("random function %q has no prior distribution", f.Name)
		errs++
	}
	if f.Body != nil {
		scope := make(map[string]string, len(f.Params))
		for i, p := range f.Params {
			if i < len(f.ArgTypes) {
				scope[p] = f.ArgTypes[i]
			}
		}
		errs += f.Body.Compile(m, cs, scope)
	}
	if errs == 0 {
		f.compiled = true
	}
	return errs
}

// Model is the registry of types, functions, and named constants.
// Evidence compilation assumes the model is complete: add everything
// before compiling evidence against it.
type Model struct {
	types     map[string]*Type
	typeOrder []string

	funcs     map[string]*Function
	funcOrder []string

	consts     map[string]string // constant name -> type name
	constOrder []string
}

// New returns an empty model.
func New() *Model {
	return &Model{
		types:  make(map[string]*Type),
		funcs:  make(map[string]*Function),
		consts: make(map[string]string),
	}
}

// AddType declares an object type with its guaranteed objects. Each
// guaranteed object is registered as a constant of the type.
func (m *Model) AddType(name string, guaranteed ...string) (*Type, error) {
	if _, ok := m.types[name]; ok {
		return nil, fmt.Errorf("model: type %q already declared", name)
	}
	t := &Type{Name: name, Guaranteed: append([]string(nil), guaranteed...)}
	m.types[name] = t
	m.typeOrder = append(m.typeOrder, name)
	for _, obj := range guaranteed {
		m.AddConstant(obj, name)
	}
	logging.Model("declared type %s with %d guaranteed object(s)", name, len(guaranteed))
	return t, nil
}

// AddFunction registers a function symbol.
func (m *Model) AddFunction(f *Function) error {
	if f.Name == "" {
		return fmt.Errorf("model: function needs a name")
	}
	if _, ok := m.funcs[f.Name]; ok {
		return fmt.Errorf("model: function %q already declared", f.Name)
	}
	m.funcs[f.Name] = f
	m.funcOrder = append(m.funcOrder, f.Name)
	logging.Model("declared function %s/%d (random=%v)", f.Name, len(f.ArgTypes), f.Random)
	return nil
}

// AddConstant registers a named constant of the given type. Re-adding
// an existing name overwrites its type binding (last write wins); this
// is relied on by Skolem constant registration.
func (m *Model) AddConstant(name, typeName string) {
	if _, ok := m.consts[name]; !ok {
		m.constOrder = append(m.constOrder, name)
	}
	m.consts[name] = typeName
}

// Type returns a declared type, nil if unknown.
func (m *Model) Type(name string) *Type { return m.types[name] }

// Function returns a declared function, nil if unknown.
func (m *Model) Function(name string) *Function { return m.funcs[name] }

// ConstantType returns the type name of a constant.
func (m *Model) ConstantType(name string) (string, bool) {
	t, ok := m.consts[name]
	return t, ok
}

// Types returns the declared types in declaration order.
func (m *Model) Types() []*Type {
	out := make([]*Type, len(m.typeOrder))
	for i, n := range m.typeOrder {
		out[i] = m.types[n]
	}
	return out
}

// Functions returns the declared functions in declaration order.
func (m *Model) Functions() []*Function {
	out := make([]*Function, len(m.funcOrder))
	for i, n := range m.funcOrder {
		out[i] = m.funcs[n]
	}
	return out
}
