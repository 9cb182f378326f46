package model

// CallStack is an insertion-ordered set of identifiers threaded through
// the resolution call graph as a cycle guard. Before resolving a
// dependency its identifier is pushed; a push that finds the identifier
// already present is a dependency cycle.
type CallStack struct {
	order []string
	seen  map[string]struct{}
}

// NewCallStack returns an empty call stack.
func NewCallStack() *CallStack {
	return &CallStack{seen: make(map[string]struct{})}
}

// Push adds an identifier to the stack. It returns false if the
// identifier is already present, which indicates a dependency cycle.
func (cs *CallStack) Push(id string) bool {
	if _, ok := cs.seen[id]; ok {
		return false
	}
	cs.seen[id] = struct{}{}
	cs.order = append(cs.order, id)
	return true
}

// Pop removes the most recently pushed identifier. It must match id;
// mismatched pops indicate a bug in the resolution code.
func (cs *CallStack) Pop(id string) {
	if len(cs.order) == 0 || cs.order[len(cs.order)-1] != id {
		panic("model: unbalanced CallStack pop: " + id)
	}
	cs.order = cs.order[:len(cs.order)-1]
	delete(cs.seen, id)
}

// Contains reports whether an identifier is currently on the stack.
func (cs *CallStack) Contains(id string) bool {
	_, ok := cs.seen[id]
	return ok
}

// Len returns the current stack depth.
func (cs *CallStack) Len() int { return len(cs.order) }

// Trace returns the identifiers currently on the stack, oldest first.
// Used in cycle diagnostics.
func (cs *CallStack) Trace() []string {
	out := make([]string, len(cs.order))
	copy(out, cs.order)
	return out
}
