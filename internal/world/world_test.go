package world

import (
	"math"
	"math/rand"
	"testing"

	"blogo/internal/bn"
	"blogo/internal/evidence"
	"blogo/internal/model"
)

func testModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New()
	if _, err := m.AddType("Person", "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddType("Thing", "a"); err != nil {
		t.Fatal(err)
	}

	age, err := model.NewDistribution(model.Entry{Value: 6, Prob: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddFunction(&model.Function{
		Name: "Age", ArgTypes: []string{"Person"}, RetType: "Integer", Random: true, Prior: age,
	}); err != nil {
		t.Fatal(err)
	}

	f, err := model.NewDistribution(model.Entry{Value: 3, Prob: 0.25}, model.Entry{Value: 4, Prob: 0.75})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddFunction(&model.Function{
		Name: "f", ArgTypes: []string{"Thing"}, RetType: "Integer", Random: true, Prior: f,
	}); err != nil {
		t.Fatal(err)
	}

	if err := m.AddFunction(&model.Function{
		Name:     "IsAdult",
		Params:   []string{"p"},
		ArgTypes: []string{"Person"},
		RetType:  "Boolean",
		Body: model.NewCompare(model.OpGt,
			model.NewFuncApp("Age", model.NewSymbolRef("p")), model.NewLiteral(5)),
	}); err != nil {
		t.Fatal(err)
	}

	if err := m.AddFunction(&model.Function{
		Name:     "Nickname",
		ArgTypes: []string{"Person"},
		RetType:  "String",
		Interp:   map[string]any{"alice": "ally"},
	}); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestWorld_SetAndValue(t *testing.T) {
	w := New(testModel(t), nil)
	v := bn.NewFuncAppVar("Age", []string{"alice"}, bn.NoTime)

	if _, ok := w.Value(v); ok {
		t.Fatal("fresh world should have no assignment")
	}
	if lp := w.LogProbOf(v); lp != 0 {
		t.Errorf("unassigned LogProbOf = %v, want 0", lp)
	}

	w.Set(v, 6, -0.25)
	got, ok := w.Value(v)
	if !ok || got != 6 {
		t.Errorf("Value = %v, %v", got, ok)
	}
	if lp := w.LogProbOf(v); lp != -0.25 {
		t.Errorf("LogProbOf = %v", lp)
	}

	// Overwrite keeps a single entry.
	w.Set(v, 4, -1)
	if got, _ := w.Value(v); got != 4 {
		t.Errorf("overwritten Value = %v", got)
	}
	if len(w.Vars()) != 1 {
		t.Errorf("Vars = %v", w.Vars())
	}
}

func TestWorld_Materialize(t *testing.T) {
	m := testModel(t)
	w := New(m, rand.New(rand.NewSource(1)))

	val, lp, err := w.Materialize("Age", []string{"alice"}, bn.NoTime)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if val != 6 || lp != 0 {
		t.Errorf("point-mass prior should give 6 with logprob 0, got %v / %v", val, lp)
	}

	// A second call returns the cached assignment, not a fresh draw.
	again, lp2, err := w.Materialize("Age", []string{"alice"}, bn.NoTime)
	if err != nil || again != val || lp2 != lp {
		t.Errorf("cached Materialize = %v, %v, %v", again, lp2, err)
	}
	if len(w.Vars()) != 1 {
		t.Errorf("Vars = %v", w.Vars())
	}
}

func TestWorld_MaterializeErrors(t *testing.T) {
	m := testModel(t)

	if _, _, err := New(m, rand.New(rand.NewSource(1))).Materialize("NoSuchFunc", nil, bn.NoTime); err == nil {
		t.Error("unknown function should fail")
	}
	if _, _, err := New(m, rand.New(rand.NewSource(1))).Materialize("IsAdult", []string{"alice"}, bn.NoTime); err == nil {
		t.Error("non-random function should fail")
	}
	if _, _, err := New(m, nil).Materialize("Age", []string{"alice"}, bn.NoTime); err == nil {
		t.Error("sampling without an RNG should fail")
	}
}

func TestWorld_SetBasic(t *testing.T) {
	m := testModel(t)
	w := New(m, nil)

	lp, err := w.SetBasic("f", []string{"a"}, bn.NoTime, 3)
	if err != nil {
		t.Fatalf("SetBasic: %v", err)
	}
	if math.Abs(lp-math.Log(0.25)) > 1e-12 {
		t.Errorf("logprob = %v, want log(0.25)", lp)
	}
	v := bn.NewFuncAppVar("f", []string{"a"}, bn.NoTime)
	if got, ok := w.Value(v); !ok || got != 3 {
		t.Errorf("Value = %v, %v", got, ok)
	}
	if w.LogProbOf(v) != lp {
		t.Errorf("LogProbOf = %v, want %v", w.LogProbOf(v), lp)
	}

	// Outside the prior's support: assigned, weighted -Inf, no error.
	lp, err = w.SetBasic("f", []string{"a"}, bn.NoTime, 99)
	if err != nil {
		t.Fatalf("SetBasic out of support: %v", err)
	}
	if !math.IsInf(lp, -1) {
		t.Errorf("out-of-support logprob = %v, want -Inf", lp)
	}

	if _, err := w.SetBasic("IsAdult", []string{"alice"}, bn.NoTime, true); err == nil {
		t.Error("non-random function should fail")
	}
}

func TestWorld_Eval(t *testing.T) {
	m := testModel(t)
	w := New(m, rand.New(rand.NewSource(1)))

	got, err := w.Eval(model.NewLiteral(3.5), nil)
	if err != nil || got != 3.5 {
		t.Errorf("literal = %v, %v", got, err)
	}

	got, err = w.Eval(model.NewSymbolRef("x"), map[string]any{"x": "alice"})
	if err != nil || got != "alice" {
		t.Errorf("env symbol = %v, %v", got, err)
	}
	got, err = w.Eval(model.NewSymbolRef("bob"), nil)
	if err != nil || got != "bob" {
		t.Errorf("constant symbol = %v, %v", got, err)
	}
	if _, err := w.Eval(model.NewSymbolRef("carol"), nil); err == nil {
		t.Error("unbound symbol should fail")
	}

	// Random application materializes; point-mass prior makes it
	// deterministic.
	got, err = w.Eval(model.NewFuncApp("Age", model.NewSymbolRef("alice")), nil)
	if err != nil || got != 6 {
		t.Errorf("random app = %v, %v", got, err)
	}

	// Derived body evaluates under the parameter binding.
	got, err = w.Eval(model.NewFuncApp("IsAdult", model.NewSymbolRef("alice")), nil)
	if err != nil || got != true {
		t.Errorf("derived app = %v, %v", got, err)
	}

	// Fixed interpretation table.
	got, err = w.Eval(model.NewFuncApp("Nickname", model.NewSymbolRef("alice")), nil)
	if err != nil || got != "ally" {
		t.Errorf("interp app = %v, %v", got, err)
	}
	if _, err := w.Eval(model.NewFuncApp("Nickname", model.NewSymbolRef("bob")), nil); err == nil {
		t.Error("missing interpretation should fail")
	}

	if _, err := w.Eval(model.NewFuncApp("Age"), nil); err == nil {
		t.Error("arity mismatch should fail")
	}
}

func TestWorld_EvalCompare(t *testing.T) {
	m := testModel(t)
	w := New(m, nil)

	cases := []struct {
		op   model.CompareOp
		l, r any
		want bool
	}{
		{model.OpEq, 3, 3.0, true},
		{model.OpNe, 3, 4, true},
		{model.OpLt, 3, 4, true},
		{model.OpLe, 4, 4, true},
		{model.OpGt, 5, 4, true},
		{model.OpGe, 3, 4, false},
	}
	for _, c := range cases {
		got, err := w.Eval(model.NewCompare(c.op, model.NewLiteral(c.l), model.NewLiteral(c.r)), nil)
		if err != nil {
			t.Fatalf("%v %s %v: %v", c.l, c.op, c.r, err)
		}
		if got != c.want {
			t.Errorf("%v %s %v = %v, want %v", c.l, c.op, c.r, got, c.want)
		}
	}

	if _, err := w.Eval(model.NewCompare(model.OpLt, model.NewLiteral("a"), model.NewLiteral(1)), nil); err == nil {
		t.Error("unordered operands should fail")
	}
}

func TestWorld_CountSatisfying(t *testing.T) {
	m := testModel(t)
	w := New(m, rand.New(rand.NewSource(1)))

	cond := model.NewCompare(model.OpGt,
		model.NewFuncApp("Age", model.NewSymbolRef("x")), model.NewLiteral(5))
	n, err := w.CountSatisfying("Person", "x", cond)
	if err != nil {
		t.Fatalf("CountSatisfying: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2 (every Age is 6)", n)
	}

	n, err = w.CountSatisfying("Person", "x", nil)
	if err != nil || n != 2 {
		t.Errorf("nil condition = %d, %v", n, err)
	}

	if _, err := w.CountSatisfying("NoSuchType", "x", nil); err == nil {
		t.Error("unknown type should fail")
	}
	if _, err := w.CountSatisfying("Person", "x", model.NewLiteral(7)); err == nil {
		t.Error("non-boolean condition should fail")
	}
}

func TestWorld_SupportsEvidence(t *testing.T) {
	m := testModel(t)
	ev := evidence.New()
	ev.AddValueEvidence(evidence.NewValueEvidence(m,
		model.NewFuncApp("f", model.NewSymbolRef("a")), model.NewLiteral(3)))
	if errs, err := ev.Compile(); errs != 0 || err != nil {
		t.Fatalf("compile: %d errors, %v", errs, err)
	}

	w := New(m, rand.New(rand.NewSource(1)))
	p, err := ev.Likelihood(w)
	if err != nil {
		t.Fatalf("Likelihood: %v", err)
	}
	if math.Abs(p-0.25) > 1e-12 {
		t.Errorf("P(f(a)=3) = %v, want the prior mass 0.25", p)
	}

	// An observation outside the prior's support yields probability 0.
	ev2 := evidence.New()
	ev2.AddValueEvidence(evidence.NewValueEvidence(m,
		model.NewFuncApp("f", model.NewSymbolRef("a")), model.NewLiteral(99)))
	if _, err := ev2.Compile(); err != nil {
		t.Fatal(err)
	}
	p, err = ev2.Likelihood(New(m, rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("Likelihood: %v", err)
	}
	if p != 0 {
		t.Errorf("out-of-support likelihood = %v, want 0", p)
	}
}

func TestWorld_SupportsSymbolEvidence(t *testing.T) {
	m := testModel(t)
	cond := model.NewCompare(model.OpGt,
		model.NewFuncApp("Age", model.NewSymbolRef("x")), model.NewLiteral(5))
	ev := evidence.New()
	ev.AddSymbolEvidence(evidence.NewSymbolEvidence(m, "Person", "x", cond, "S1", "S2"))
	if errs, err := ev.Compile(); errs != 0 || err != nil {
		t.Fatalf("compile: %d errors, %v", errs, err)
	}

	w := New(m, rand.New(rand.NewSource(1)))
	p, err := ev.Likelihood(w)
	if err != nil {
		t.Fatalf("Likelihood: %v", err)
	}
	// Both persons deterministically satisfy the condition, and the
	// claimed cardinality is 2.
	if p != 1 {
		t.Errorf("P = %v, want 1", p)
	}
}
