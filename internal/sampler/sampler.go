// Package sampler estimates evidence probability by likelihood
// weighting: worlds are drawn from the model prior and weighted by the
// likelihood the compiled evidence assigns to each. It is a consumer of
// the evidence core's query interface, not part of it.
package sampler

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"blogo/internal/evidence"
	"blogo/internal/logging"
	"blogo/internal/model"
	"blogo/internal/world"
)

// Config controls a sampling run.
type Config struct {
	Samples int   // total worlds to draw
	Chains  int   // parallel chains; samples are split across them
	Seed    int64 // base RNG seed; chain i uses Seed+i
}

// Result summarizes a likelihood-weighting run.
type Result struct {
	RunID   string
	Samples int
	Chains  int
	Seed    int64

	// Prob is the mean likelihood across sampled worlds, i.e. the
	// estimate of the evidence probability under the model prior.
	Prob float64

	// ESS is the effective sample size of the weight set.
	ESS float64

	Elapsed time.Duration
}

// LikelihoodWeighter draws worlds from the model prior and weights them
// by evidence likelihood.
type LikelihoodWeighter struct {
	m   *model.Model
	ev  *evidence.Evidence
	cfg Config
}

// New builds a likelihood weighter. The evidence must be compiled
// before Run; an uncompiled non-empty evidence set fails the run.
func New(m *model.Model, ev *evidence.Evidence, cfg Config) *LikelihoodWeighter {
	if cfg.Chains <= 0 {
		cfg.Chains = 1
	}
	return &LikelihoodWeighter{m: m, ev: ev, cfg: cfg}
}

type chainStats struct {
	sumW  float64
	sumW2 float64
	n     int
}

// Run executes the sampling run, splitting samples across parallel
// chains. Each chain owns its RNG and its worlds; nothing is shared.
func (lw *LikelihoodWeighter) Run(ctx context.Context) (*Result, error) {
	if lw.cfg.Samples <= 0 {
		return nil, fmt.Errorf("sampler: samples must be positive, got %d", lw.cfg.Samples)
	}

	runID := uuid.NewString()
	start := time.Now()
	logging.Sampler("run %s: %d samples over %d chain(s), seed %d",
		runID, lw.cfg.Samples, lw.cfg.Chains, lw.cfg.Seed)

	perChain := lw.cfg.Samples / lw.cfg.Chains
	remainder := lw.cfg.Samples % lw.cfg.Chains

	stats := make([]chainStats, lw.cfg.Chains)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < lw.cfg.Chains; i++ {
		n := perChain
		if i < remainder {
			n++
		}
		g.Go(lw.chain(ctx, i, n, &stats[i]))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total chainStats
	for _, s := range stats {
		total.sumW += s.sumW
		total.sumW2 += s.sumW2
		total.n += s.n
	}

	res := &Result{
		RunID:   runID,
		Samples: total.n,
		Chains:  lw.cfg.Chains,
		Seed:    lw.cfg.Seed,
		Elapsed: time.Since(start),
	}
	if total.n > 0 {
		res.Prob = total.sumW / float64(total.n)
	}
	if total.sumW2 > 0 {
		res.ESS = (total.sumW * total.sumW) / total.sumW2
	}
	logging.Sampler("run %s: prob=%.6g ess=%.1f elapsed=%v", runID, res.Prob, res.ESS, res.Elapsed)
	return res, nil
}

func (lw *LikelihoodWeighter) chain(ctx context.Context, id, n int, out *chainStats) func() error {
	return func() error {
		rng := rand.New(rand.NewSource(lw.cfg.Seed + int64(id)))
		for s := 0; s < n; s++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			w := world.New(lw.m, rng)
			weight, err := lw.ev.Likelihood(w)
			if err != nil {
				return fmt.Errorf("sampler: chain %d sample %d: %w", id, s, err)
			}
			out.sumW += weight
			out.sumW2 += weight * weight
			out.n++
		}
		logging.SamplerDebug("chain %d finished %d samples", id, n)
		return nil
	}
}
