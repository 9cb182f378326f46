// Package world provides a concrete partial world: a possibly
// incomplete assignment of values to random variables, each with the
// log-probability it was drawn with, backed by a model and an RNG for
// materializing unassigned basic variables. It satisfies the narrow
// world interfaces the evidence core consumes.
package world

import (
	"fmt"
	"math/rand"
	"strings"

	"blogo/internal/bn"
	"blogo/internal/logging"
	"blogo/internal/model"
	"blogo/internal/values"
)

type entry struct {
	v       bn.Var
	value   any
	logProb float64
}

// World is a partial assignment of values to variables. Not safe for
// concurrent use; each sampling chain owns its own worlds.
type World struct {
	m       *model.Model
	rng     *rand.Rand
	entries map[string]entry
	order   []string
}

// New returns an empty world over m. rng drives sampling of unassigned
// basic variables; it may be nil for worlds that are only read.
func New(m *model.Model, rng *rand.Rand) *World {
	return &World{m: m, rng: rng, entries: make(map[string]entry)}
}

// Value returns the variable's current value, false when unassigned.
func (w *World) Value(v bn.Var) (any, bool) {
	e, ok := w.entries[v.Key()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// LogProbOf returns the log-probability with which the variable's
// current value was drawn, 0 for unassigned or deterministic variables.
func (w *World) LogProbOf(v bn.Var) float64 {
	return w.entries[v.Key()].logProb
}

// Set records an assignment with its log-probability, overwriting any
// previous assignment of the same variable.
func (w *World) Set(v bn.Var, value any, logProb float64) {
	if _, ok := w.entries[v.Key()]; !ok {
		w.order = append(w.order, v.Key())
	}
	w.entries[v.Key()] = entry{v: v, value: value, logProb: logProb}
}

// Vars returns the assigned variables in assignment order.
func (w *World) Vars() []bn.Var {
	out := make([]bn.Var, len(w.order))
	for i, k := range w.order {
		out[i] = w.entries[k].v
	}
	return out
}

// Materialize ensures the basic variable for fn(args)@t has a concrete
// value, sampling from the function's prior when unassigned. It returns
// the value and the log-probability it carries in this world.
func (w *World) Materialize(fn string, args []string, t bn.Timestep) (any, float64, error) {
	v := bn.NewFuncAppVar(fn, args, t)
	if e, ok := w.entries[v.Key()]; ok {
		return e.value, e.logProb, nil
	}

	f := w.m.Function(fn)
	if f == nil {
		return nil, 0, fmt.Errorf("world: unknown function %q", fn)
	}
	if !f.Random {
		return nil, 0, fmt.Errorf("world: %q is not a random function", fn)
	}
	if f.Prior == nil {
		return nil, 0, fmt.Errorf("world: random function %q has no prior", fn)
	}
	if w.rng == nil {
		return nil, 0, fmt.Errorf("world: cannot sample %s without an RNG", v)
	}

	val, lp := f.Prior.Sample(w.rng)
	w.Set(v, val, lp)
	logging.WorldDebug("materialized %s = %s (logprob %.4f)", v, values.Format(val), lp)
	return val, lp, nil
}

// SetBasic assigns the basic variable for fn(args)@t to an observed
// value with the prior log-probability of that value, overwriting any
// earlier assignment. Values outside the prior's support carry -Inf.
func (w *World) SetBasic(fn string, args []string, t bn.Timestep, value any) (float64, error) {
	f := w.m.Function(fn)
	if f == nil {
		return 0, fmt.Errorf("world: unknown function %q", fn)
	}
	if !f.Random {
		return 0, fmt.Errorf("world: %q is not a random function", fn)
	}
	if f.Prior == nil {
		return 0, fmt.Errorf("world: random function %q has no prior", fn)
	}

	lp := f.Prior.LogProb(value)
	w.Set(bn.NewFuncAppVar(fn, args, t), value, lp)
	return lp, nil
}

// Eval evaluates a term against the world, materializing any basic
// variables the evaluation needs. env binds logically-scoped names
// (bound variables, function parameters) to values.
func (w *World) Eval(t model.Term, env map[string]any) (any, error) {
	switch tt := t.(type) {
	case *model.Literal:
		return tt.Value, nil

	case *model.SymbolRef:
		if v, ok := env[tt.Name]; ok {
			return v, nil
		}
		if _, ok := w.m.ConstantType(tt.Name); ok {
			// Object constants evaluate to themselves; objects are
			// identified by name.
			return tt.Name, nil
		}
		return nil, fmt.Errorf("world: unbound symbol %q", tt.Name)

	case *model.FuncApp:
		return w.evalFuncApp(tt, env)

	case *model.Compare:
		return w.evalCompare(tt, env)
	}
	return nil, fmt.Errorf("world: cannot evaluate term %s (%T)", t, t)
}

func (w *World) evalFuncApp(fa *model.FuncApp, env map[string]any) (any, error) {
	f := w.m.Function(fa.Name)
	if f == nil {
		return nil, fmt.Errorf("world: unknown function %q in %s", fa.Name, fa)
	}
	if len(fa.Args) != len(f.ArgTypes) {
		return nil, fmt.Errorf("world: %s: want %d argument(s), got %d", fa, len(f.ArgTypes), len(fa.Args))
	}

	argVals := make([]any, len(fa.Args))
	argStrs := make([]string, len(fa.Args))
	for i, a := range fa.Args {
		v, err := w.Eval(a, env)
		if err != nil {
			return nil, err
		}
		argVals[i] = v
		argStrs[i] = values.Format(v)
	}

	if f.Random {
		val, _, err := w.Materialize(fa.Name, argStrs, fa.Time)
		return val, err
	}
	if f.Body != nil {
		bodyEnv := make(map[string]any, len(f.Params))
		for i, p := range f.Params {
			if i < len(argVals) {
				bodyEnv[p] = argVals[i]
			}
		}
		return w.Eval(f.Body, bodyEnv)
	}
	if f.Interp != nil {
		key := strings.Join(argStrs, ",")
		val, ok := f.Interp[key]
		if !ok {
			return nil, fmt.Errorf("world: %q has no interpretation for (%s)", fa.Name, key)
		}
		return val, nil
	}
	return nil, fmt.Errorf("world: non-random function %q has no interpretation", fa.Name)
}

func (w *World) evalCompare(c *model.Compare, env map[string]any) (any, error) {
	left, err := w.Eval(c.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := w.Eval(c.Right, env)
	if err != nil {
		return nil, err
	}

	switch c.Op {
	case model.OpEq:
		return values.Equal(left, right), nil
	case model.OpNe:
		return !values.Equal(left, right), nil
	}

	ord, ok := values.Compare(left, right)
	if !ok {
		return nil, fmt.Errorf("world: cannot order %v and %v in %s", left, right, c)
	}
	switch c.Op {
	case model.OpLt:
		return ord < 0, nil
	case model.OpLe:
		return ord <= 0, nil
	case model.OpGt:
		return ord > 0, nil
	case model.OpGe:
		return ord >= 0, nil
	}
	return nil, fmt.Errorf("world: unknown comparison operator %q", c.Op)
}

// CountSatisfying counts the objects of a type whose substitution for
// boundVar makes cond evaluate to true, materializing basic variables
// as needed. A nil cond matches every guaranteed object of the type.
func (w *World) CountSatisfying(typeName, boundVar string, cond model.Term) (int, error) {
	typ := w.m.Type(typeName)
	if typ == nil {
		return 0, fmt.Errorf("world: unknown type %q", typeName)
	}

	count := 0
	for _, obj := range typ.Guaranteed {
		if cond == nil {
			count++
			continue
		}
		v, err := w.Eval(cond, map[string]any{boundVar: obj})
		if err != nil {
			return 0, err
		}
		b, ok := v.(bool)
		if !ok {
			return 0, fmt.Errorf("world: condition %s evaluated to non-boolean %v", cond, v)
		}
		if b {
			count++
		}
	}
	return count, nil
}
