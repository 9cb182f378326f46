package sampler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"blogo/internal/evidence"
	"blogo/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// rainModel declares a single argumentless Bernoulli(0.3) variable.
func rainModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New()
	prior, err := model.NewBernoulli(0.3)
	require.NoError(t, err)
	require.NoError(t, m.AddFunction(&model.Function{
		Name: "Rain", RetType: "Boolean", Random: true, Prior: prior,
	}))
	return m
}

func rainEvidence(t *testing.T, m *model.Model) *evidence.Evidence {
	t.Helper()
	ev := evidence.New()
	ev.AddValueEvidence(evidence.NewValueEvidence(m,
		model.NewFuncApp("Rain"), model.NewLiteral(true)))
	errs, err := ev.Compile()
	require.NoError(t, err)
	require.Equal(t, 0, errs)
	return ev
}

func TestRun_PointObservation(t *testing.T) {
	m := rainModel(t)
	ev := rainEvidence(t, m)

	lw := New(m, ev, Config{Samples: 200, Seed: 7})
	res, err := lw.Run(context.Background())
	require.NoError(t, err)

	// The observed variable is pinned to its prior mass, so every
	// sampled world carries the exact weight 0.3.
	assert.InDelta(t, 0.3, res.Prob, 1e-12)
	assert.InDelta(t, 200, res.ESS, 1e-9, "uniform weights give ESS == n")
	assert.Equal(t, 200, res.Samples)
	assert.Equal(t, 1, res.Chains)
	assert.NotEmpty(t, res.RunID)
}

func TestRun_SplitsSamplesAcrossChains(t *testing.T) {
	m := rainModel(t)
	ev := rainEvidence(t, m)

	// 10 samples over 4 chains: two chains take 3, two take 2.
	lw := New(m, ev, Config{Samples: 10, Chains: 4, Seed: 1})
	res, err := lw.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, res.Samples)
	assert.Equal(t, 4, res.Chains)
	assert.InDelta(t, 0.3, res.Prob, 1e-12)
}

func TestRun_IndicatorWeights(t *testing.T) {
	m := model.New()
	_, err := m.AddType("Person", "alice")
	require.NoError(t, err)
	age, err := model.NewDistribution(model.Entry{Value: 4, Prob: 0.5}, model.Entry{Value: 6, Prob: 0.5})
	require.NoError(t, err)
	require.NoError(t, m.AddFunction(&model.Function{
		Name: "Age", ArgTypes: []string{"Person"}, RetType: "Integer", Random: true, Prior: age,
	}))

	// Cardinality evidence resolves to a derived variable, so each
	// world contributes an indicator weight: 1 when exactly one person
	// is older than 5, else 0.
	cond := model.NewCompare(model.OpGt,
		model.NewFuncApp("Age", model.NewSymbolRef("x")), model.NewLiteral(5))
	ev := evidence.New()
	ev.AddSymbolEvidence(evidence.NewSymbolEvidence(m, "Person", "x", cond, "S1"))
	errs, err := ev.Compile()
	require.NoError(t, err)
	require.Equal(t, 0, errs)

	lw := New(m, ev, Config{Samples: 4000, Chains: 2, Seed: 11})
	res, err := lw.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Prob, 0.05)
	assert.Greater(t, res.ESS, 1000.0)
}

func TestRun_InvalidSampleCount(t *testing.T) {
	m := rainModel(t)
	lw := New(m, rainEvidence(t, m), Config{Samples: 0})
	_, err := lw.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_UncompiledEvidenceFails(t *testing.T) {
	m := rainModel(t)
	ev := evidence.New()
	ev.AddValueEvidence(evidence.NewValueEvidence(m,
		model.NewFuncApp("Rain"), model.NewLiteral(true)))

	lw := New(m, ev, Config{Samples: 10})
	_, err := lw.Run(context.Background())
	assert.ErrorIs(t, err, evidence.ErrNotCompiled)
}

func TestRun_CanceledContext(t *testing.T) {
	m := rainModel(t)
	ev := rainEvidence(t, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lw := New(m, ev, Config{Samples: 100})
	_, err := lw.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
