package evidence

import (
	"errors"
	"fmt"

	"blogo/internal/bn"
	"blogo/internal/values"
)

// ErrNotCompiled is returned by likelihood queries on non-empty
// evidence that has not been compiled.
var ErrNotCompiled = errors.New("evidence: not compiled")

// ErrNotObserved is returned when looking up the observed value of a
// variable that was never observed.
var ErrNotObserved = errors.New("evidence: no observed value for variable")

// ContradictionError reports that a statement observed a variable to a
// value that differs from an earlier observation. A contradiction is
// fatal for the whole evidence set: it sticks to the Evidence instance
// and every subsequent likelihood query keeps returning it.
type ContradictionError struct {
	Var      bn.Var
	Existing any
	Offered  any
	Source   string // rendering of the statement that raised the conflict
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("evidence %q contradicts earlier evidence: %s observed as %s, offered %s",
		e.Source, e.Var, values.Format(e.Existing), values.Format(e.Offered))
}
