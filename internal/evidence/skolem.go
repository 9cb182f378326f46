package evidence

// SkolemConstant is a named symbol introduced by a symbol evidence
// statement, denoting one of the objects the statement implicitly
// quantifies over. Identity is by name within one Evidence instance.
type SkolemConstant struct {
	name     string
	typeName string
	owner    *SymbolEvidenceStatement
}

// Name returns the constant's symbol name.
func (c *SkolemConstant) Name() string { return c.name }

// TypeName returns the object type the constant denotes.
func (c *SkolemConstant) TypeName() string { return c.typeName }

// Owner returns the symbol evidence statement that introduced the
// constant.
func (c *SkolemConstant) Owner() *SymbolEvidenceStatement { return c.owner }

func (c *SkolemConstant) String() string { return c.name }
