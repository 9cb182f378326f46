// Package casefile loads declarative "case files": YAML documents that
// declare a model (types, functions, distributions) together with the
// evidence to compile against it. Terms are encoded as structured nodes
// rather than concrete syntax, so no expression parser is involved.
package casefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"blogo/internal/bn"
	"blogo/internal/evidence"
	"blogo/internal/logging"
	"blogo/internal/model"
)

// Case is the top-level case file document.
type Case struct {
	Name      string         `yaml:"name"`
	Types     []TypeSpec     `yaml:"types"`
	Functions []FunctionSpec `yaml:"functions"`
	Evidence  EvidenceSpec   `yaml:"evidence"`
}

// TypeSpec declares an object type with guaranteed objects.
type TypeSpec struct {
	Name       string   `yaml:"name"`
	Guaranteed []string `yaml:"guaranteed"`
}

// FunctionSpec declares a function symbol.
type FunctionSpec struct {
	Name    string         `yaml:"name"`
	Args    []string       `yaml:"args"`
	Params  []string       `yaml:"params"`
	Returns string         `yaml:"returns"`
	Random  bool           `yaml:"random"`
	Prior   []PriorEntry   `yaml:"prior"`
	Body    *TermSpec      `yaml:"body"`
	Interp  map[string]any `yaml:"interp"`
}

// PriorEntry is one weighted value of a random function's prior.
type PriorEntry struct {
	Value any     `yaml:"value"`
	Prob  float64 `yaml:"prob"`
}

// EvidenceSpec holds the evidence statements of a case.
type EvidenceSpec struct {
	Values  []ValueSpec  `yaml:"values"`
	Symbols []SymbolSpec `yaml:"symbols"`
}

// ValueSpec is a value evidence statement: subject = value.
type ValueSpec struct {
	Subject TermSpec `yaml:"subject"`
	Value   any      `yaml:"value"`
}

// SymbolSpec is a symbol evidence statement.
type SymbolSpec struct {
	Type  string    `yaml:"type"`
	Bind  string    `yaml:"bind"`
	Where *TermSpec `yaml:"where"`
	Names []string  `yaml:"names"`
}

// TermSpec is a structured term node. Exactly one kind should be set:
// op (comparison), func (function application), sym (symbol reference),
// or lit (literal value).
type TermSpec struct {
	Lit  any        `yaml:"lit"`
	Sym  string     `yaml:"sym"`
	Func string     `yaml:"func"`
	Args []TermSpec `yaml:"fargs"`
	Time *int       `yaml:"time"`

	Op    string    `yaml:"op"`
	Left  *TermSpec `yaml:"left"`
	Right *TermSpec `yaml:"right"`
}

// Build converts the spec node into a model term.
func (ts *TermSpec) Build() (model.Term, error) {
	switch {
	case ts.Op != "":
		if ts.Left == nil || ts.Right == nil {
			return nil, fmt.Errorf("casefile: comparison %q needs left and right", ts.Op)
		}
		op, err := compareOp(ts.Op)
		if err != nil {
			return nil, err
		}
		left, err := ts.Left.Build()
		if err != nil {
			return nil, err
		}
		right, err := ts.Right.Build()
		if err != nil {
			return nil, err
		}
		return model.NewCompare(op, left, right), nil

	case ts.Func != "":
		args := make([]model.Term, len(ts.Args))
		for i := range ts.Args {
			a, err := ts.Args[i].Build()
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		t := bn.NoTime
		if ts.Time != nil {
			t = bn.Timestep(*ts.Time)
		}
		return model.NewFuncAppAt(ts.Func, t, args...), nil

	case ts.Sym != "":
		return model.NewSymbolRef(ts.Sym), nil

	case ts.Lit != nil:
		return model.NewLiteral(ts.Lit), nil
	}
	return nil, fmt.Errorf("casefile: term node has no kind (need lit, sym, func, or op)")
}

func compareOp(op string) (model.CompareOp, error) {
	switch model.CompareOp(op) {
	case model.OpEq, model.OpNe, model.OpLt, model.OpLe, model.OpGt, model.OpGe:
		return model.CompareOp(op), nil
	}
	return "", fmt.Errorf("casefile: unknown comparison operator %q", op)
}

// Load reads a case file and builds its model and (uncompiled)
// evidence.
func Load(path string) (*model.Model, *evidence.Evidence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("casefile: read %s: %w", path, err)
	}
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, nil, fmt.Errorf("casefile: parse %s: %w", path, err)
	}
	return c.Build()
}

// Build constructs the model and evidence declared by the case.
func (c *Case) Build() (*model.Model, *evidence.Evidence, error) {
	m := model.New()
	for _, ts := range c.Types {
		if _, err := m.AddType(ts.Name, ts.Guaranteed...); err != nil {
			return nil, nil, err
		}
	}
	for _, fs := range c.Functions {
		f, err := fs.build()
		if err != nil {
			return nil, nil, err
		}
		if err := m.AddFunction(f); err != nil {
			return nil, nil, err
		}
	}

	ev := evidence.New()
	for _, ss := range c.Evidence.Symbols {
		var cond model.Term
		if ss.Where != nil {
			t, err := ss.Where.Build()
			if err != nil {
				return nil, nil, err
			}
			cond = t
		}
		ev.AddSymbolEvidence(evidence.NewSymbolEvidence(m, ss.Type, ss.Bind, cond, ss.Names...))
	}
	for _, vs := range c.Evidence.Values {
		subject, err := vs.Subject.Build()
		if err != nil {
			return nil, nil, err
		}
		ev.AddValueEvidence(evidence.NewValueEvidence(m, subject, model.NewLiteral(vs.Value)))
	}

	logging.Boot("case %q: %d type(s), %d function(s), %d evidence statement(s)",
		c.Name, len(c.Types), len(c.Functions),
		len(c.Evidence.Values)+len(c.Evidence.Symbols))
	return m, ev, nil
}

func (fs *FunctionSpec) build() (*model.Function, error) {
	f := &model.Function{
		Name:     fs.Name,
		Params:   fs.Params,
		ArgTypes: fs.Args,
		RetType:  fs.Returns,
		Random:   fs.Random,
		Interp:   fs.Interp,
	}
	if len(fs.Prior) > 0 {
		entries := make([]model.Entry, len(fs.Prior))
		for i, p := range fs.Prior {
			entries[i] = model.Entry{Value: p.Value, Prob: p.Prob}
		}
		d, err := model.NewDistribution(entries...)
		if err != nil {
			return nil, fmt.Errorf("casefile: function %q: %w", fs.Name, err)
		}
		f.Prior = d
	}
	if fs.Body != nil {
		body, err := fs.Body.Build()
		if err != nil {
			return nil, fmt.Errorf("casefile: function %q body: %w", fs.Name, err)
		}
		f.Body = body
	}
	return f, nil
}
