package evidence

import (
	"blogo/internal/bn"
	"blogo/internal/model"
)

// World is the read side of a partial world: a possibly incomplete
// assignment of values to variables, with the log-probability each
// value was drawn with. Implemented by internal/world; evidence only
// consumes this narrow interface.
type World interface {
	// Value returns the variable's current value, false when the world
	// has no assignment for it.
	Value(v bn.Var) (any, bool)

	// LogProbOf returns the log-probability with which the variable's
	// current value was drawn. Deterministically supported variables
	// report 0 (log of 1).
	LogProbOf(v bn.Var) float64
}

// SupportExpander extends World with the operations evidence needs to
// materialize basic variables and expand deterministic support.
type SupportExpander interface {
	World

	// Set records an assignment with its log-probability.
	Set(v bn.Var, value any, logProb float64)

	// Materialize ensures the basic variable for fn(args)@t has a
	// concrete value, sampling from the function's prior if absent.
	Materialize(fn string, args []string, t bn.Timestep) (any, float64, error)

	// SetBasic assigns the basic variable for fn(args)@t to an
	// observed value, with the prior log-probability of that value. It
	// returns that log-probability (-Inf when the value is outside the
	// prior's support).
	SetBasic(fn string, args []string, t bn.Timestep, value any) (float64, error)

	// Eval evaluates a term against the world, materializing any basic
	// variables the evaluation needs. env binds logically-scoped names.
	Eval(t model.Term, env map[string]any) (any, error)

	// CountSatisfying counts the objects of a type whose substitution
	// for boundVar makes cond true. A nil cond matches every object.
	CountSatisfying(typeName, boundVar string, cond model.Term) (int, error)
}
