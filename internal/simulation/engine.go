package simulation

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine performs the Monte-Carlo simulation.
type Engine struct {
	runner *Runner
	seed   int64
}

// RunParams describes a single simulation request.
type RunParams struct {
	Iterations      int
	BaselineCost    float64
	StartDate       time.Time
	ConfidenceLevel float64
}

func NewEngine(cfg RunnerConfig) *Engine {
	return &Engine{
		runner: NewRunner(cfg),
		seed:   time.Now().UnixNano(),
	}
}

// SetSeed fixes the random seed for reproducible runs.
func (e *Engine) SetSeed(seed int64) {
	e.seed = seed
}

// Seed returns the seed the next run will use.
func (e *Engine) Seed() int64 {
	return e.seed
}

// Run executes the trials for vars and aggregates them into a Result.
func (e *Engine) Run(ctx context.Context, vars []Variable, p RunParams) (Result, error) {
	if p.Iterations <= 0 {
		return Result{}, fmt.Errorf("%w: iterations must be > 0, got %d", ErrInvalidInput, p.Iterations)
	}
	if p.ConfidenceLevel < 0 || p.ConfidenceLevel >= 1 {
		return Result{}, fmt.Errorf("%w: confidence level must be in [0, 1), got %.2f", ErrInvalidInput, p.ConfidenceLevel)
	}

	cfg := e.runner.Config()
	start := time.Now()
	log.Debug().
		Int("iterations", p.Iterations).
		Int("variables", len(vars)).
		Int("workers", cfg.Workers).
		Int64("seed", e.seed).
		Msg("Starting simulation")

	outcomes, err := e.runner.Run(ctx, vars, p.Iterations, p.BaselineCost, e.seed)
	if err != nil {
		return Result{}, err
	}

	res, err := Aggregate(outcomes, vars, AggregateOptions{
		StartDate:       p.StartDate,
		ConfidenceLevel: p.ConfidenceLevel,
	})
	if err != nil {
		return Result{}, err
	}
	res.Materialization = cfg.Materialization
	res.Warnings = append(res.Warnings, runWarnings(vars, p, cfg)...)
	res.Insights = append(res.Insights, criticalityInsights(res.Criticality)...)

	log.Debug().
		Dur("elapsed", time.Since(start)).
		Float64("expectedDuration", res.ExpectedDuration).
		Float64("expectedCost", res.ExpectedCost).
		Msg("Simulation finished")

	return res, nil
}

func runWarnings(vars []Variable, p RunParams, cfg RunnerConfig) []string {
	var warnings []string
	durations, risks := 0, 0
	for _, v := range vars {
		switch v.Kind {
		case KindDuration:
			durations++
		case KindCostRisk:
			risks++
		}
	}

	if durations == 0 {
		warnings = append(warnings, "No task carries a positive duration estimate. The schedule forecast is zero days for every trial.")
	}
	if risks > 0 && cfg.Materialization == MaterializeFixed {
		warnings = append(warnings, fmt.Sprintf("Risk materialization uses a fixed %.0f%% rate for every risk; declared risk probabilities are ignored.", cfg.MaterializationRate*100))
	}
	if p.Iterations < 1000 {
		warnings = append(warnings, fmt.Sprintf("Only %d trials were run. Percentiles are statistically weak below 1000 trials.", p.Iterations))
	}
	return warnings
}

// criticalityInsights names the items that most often overrun their estimate.
func criticalityInsights(freq map[string]float64) []string {
	type entry struct {
		name string
		freq float64
	}
	entries := make([]entry, 0, len(freq))
	for name, f := range freq {
		if f > 0 {
			entries = append(entries, entry{name, f})
		}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.freq, a.freq); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	var insights []string
	for i, e := range entries {
		if i == 3 {
			break
		}
		insights = append(insights, fmt.Sprintf("%s overran its estimate by more than the criticality threshold in %.0f%% of trials.", e.name, e.freq*100))
	}
	return insights
}
