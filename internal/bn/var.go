// Package bn defines the observable random variables that evidence is
// recorded against. Variables are used as map keys by the evidence core
// and by worlds, so identity is carried by a stable string key rather
// than by pointer.
package bn

import (
	"fmt"
	"strings"
)

// Timestep indexes a temporally-typed variable. NoTime marks variables
// with no temporal index; they live in a single implicit bucket.
type Timestep int

// NoTime is the "no temporal index" sentinel.
const NoTime Timestep = -1

// IsSet reports whether the timestep is a real index.
func (t Timestep) IsSet() bool { return t != NoTime }

func (t Timestep) String() string {
	if t == NoTime {
		return "@-"
	}
	return fmt.Sprintf("@%d", int(t))
}

// Var is an observable random variable. Key is the stable identity used
// for map lookups; two Vars denote the same variable iff their keys are
// equal, regardless of which world they are evaluated in.
type Var interface {
	Key() string
	String() string
	Timestep() Timestep
}

// FuncAppVar is a basic variable: a random function applied to ground
// arguments, optionally indexed by a timestep. This is the only
// temporally-typed variable kind.
type FuncAppVar struct {
	fn   string
	args []string
	t    Timestep
}

// NewFuncAppVar builds a basic variable from a function name and the
// canonical string forms of its ground arguments.
func NewFuncAppVar(fn string, args []string, t Timestep) *FuncAppVar {
	cp := make([]string, len(args))
	copy(cp, args)
	return &FuncAppVar{fn: fn, args: cp, t: t}
}

// Func returns the function symbol name.
func (v *FuncAppVar) Func() string { return v.fn }

// Args returns the canonical ground arguments.
func (v *FuncAppVar) Args() []string { return v.args }

// Timestep returns the temporal index, NoTime if absent.
func (v *FuncAppVar) Timestep() Timestep { return v.t }

// Key returns the stable map identity of the variable.
func (v *FuncAppVar) Key() string {
	base := fmt.Sprintf("%s(%s)", v.fn, strings.Join(v.args, ","))
	if v.t.IsSet() {
		return base + v.t.String()
	}
	return base
}

func (v *FuncAppVar) String() string { return v.Key() }

// DerivedVar is a variable synthesized to represent a compiled evidence
// statement, e.g. the cardinality of a symbol-evidence set or the value
// of a non-basic term. Derived variables carry no temporal index.
type DerivedVar struct {
	label string
}

// NewDerivedVar builds a derived variable from a human-readable label.
// The label doubles as the identity key, so it must be stable for a
// given statement rendering.
func NewDerivedVar(label string) *DerivedVar {
	return &DerivedVar{label: label}
}

// Timestep always returns NoTime for derived variables.
func (v *DerivedVar) Timestep() Timestep { return NoTime }

// Key returns the stable map identity of the variable.
func (v *DerivedVar) Key() string { return "#" + v.label }

func (v *DerivedVar) String() string { return v.label }
