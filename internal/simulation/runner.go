package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	// HoursPerDay converts summed task hours into calendar days.
	HoursPerDay = 24.0

	DefaultIterations          = 10000
	DefaultCriticalityFactor   = 1.2
	DefaultMaterializationRate = 0.3

	// cancelCheckInterval is how many trials a worker runs between context checks.
	cancelCheckInterval = 256
)

// Materialization selects the per-trial Bernoulli rate applied to cost risks.
type Materialization string

const (
	// MaterializeFixed applies the same rate to every risk regardless of its declared probability.
	MaterializeFixed Materialization = "fixed"
	// MaterializeDeclared uses each risk's declared probability.
	MaterializeDeclared Materialization = "declared"
)

// TrialOutcome is the result of one trial.
type TrialOutcome struct {
	DurationDays float64         `json:"duration_days"`
	TotalCost    float64         `json:"total_cost"`
	CriticalHits map[string]bool `json:"critical_hits,omitempty"`
}

// RunnerConfig tunes how trials are executed.
type RunnerConfig struct {
	Workers             int
	CriticalityFactor   float64
	Materialization     Materialization
	MaterializationRate float64
	Sampler             Sampler
}

// Runner executes trials across a pool of workers. Each worker owns a private
// random stream derived from the run seed, so no state is shared between them.
type Runner struct {
	cfg RunnerConfig
}

// NewRunner fills zero-valued fields of cfg with defaults.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.CriticalityFactor <= 0 {
		cfg.CriticalityFactor = DefaultCriticalityFactor
	}
	if cfg.Materialization == "" {
		cfg.Materialization = MaterializeFixed
	}
	if cfg.MaterializationRate <= 0 {
		cfg.MaterializationRate = DefaultMaterializationRate
	}
	return &Runner{cfg: cfg}
}

// Config returns the effective configuration.
func (r *Runner) Config() RunnerConfig {
	return r.cfg
}

// Run executes n trials and returns their outcomes in trial order.
// Identical (vars, n, baselineCost, seed) and worker count give identical outcomes.
func (r *Runner) Run(ctx context.Context, vars []Variable, n int, baselineCost float64, seed int64) ([]TrialOutcome, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: iterations must be > 0, got %d", ErrInvalidInput, n)
	}
	if !isFinite(baselineCost) {
		return nil, fmt.Errorf("%w: baseline cost is not finite", ErrInvalidInput)
	}
	if r.cfg.Materialization != MaterializeFixed && r.cfg.Materialization != MaterializeDeclared {
		return nil, fmt.Errorf("%w: unknown materialization policy %q", ErrInvalidInput, r.cfg.Materialization)
	}
	if err := ValidateAll(vars); err != nil {
		return nil, err
	}

	workers := r.cfg.Workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	outcomes := make([]TrialOutcome, n)
	g, gCtx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		rng := rand.New(rand.NewSource(workerSeed(seed, w)))

		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%cancelCheckInterval == 0 {
					if err := gCtx.Err(); err != nil {
						return err
					}
				}
				outcomes[i] = r.trial(rng, vars, baselineCost)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancellation that landed after a worker's last check still discards the run.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *Runner) trial(rng *rand.Rand, vars []Variable, baselineCost float64) TrialOutcome {
	totalHours := 0.0
	totalCost := baselineCost
	var hits map[string]bool

	for _, v := range vars {
		x := r.cfg.Sampler.Sample(rng, v)

		switch v.Kind {
		case KindDuration:
			totalHours += x
			if hits == nil {
				hits = make(map[string]bool)
			}
			hits[v.Name] = x > r.cfg.CriticalityFactor*v.Mode()
		case KindCostRisk:
			if rng.Float64() < r.materializationRate(v) {
				totalCost += x
			}
		}
	}

	return TrialOutcome{
		DurationDays: totalHours / HoursPerDay,
		TotalCost:    totalCost,
		CriticalHits: hits,
	}
}

func (r *Runner) materializationRate(v Variable) float64 {
	if r.cfg.Materialization == MaterializeDeclared && v.Probability != nil {
		return *v.Probability
	}
	return r.cfg.MaterializationRate
}

// workerSeed derives an independent stream seed per worker (splitmix64 finaliser).
func workerSeed(seed int64, worker int) int64 {
	z := uint64(seed) + uint64(worker+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
