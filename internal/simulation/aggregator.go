package simulation

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// DefaultCurveBins is the number of equal-width bins in a cumulative probability curve.
const DefaultCurveBins = 20

// Percentiles is the nearest-rank percentile ladder of a metric.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// DurationPoint is one edge of the duration CDF, mapped to a calendar date.
type DurationPoint struct {
	Days        float64 `json:"days"`
	Date        string  `json:"date"`
	Probability float64 `json:"probability"`
}

// CostPoint is one edge of the cost CDF.
type CostPoint struct {
	Cost        float64 `json:"cost"`
	Probability float64 `json:"probability"`
}

// ConfidenceForecast is the outcome at the requested confidence level.
type ConfidenceForecast struct {
	Level          float64 `json:"level"`
	DurationDays   float64 `json:"duration_days"`
	CompletionDate string  `json:"completion_date"`
	Cost           float64 `json:"cost"`
}

// Result holds the summary statistics of a simulation run.
type Result struct {
	Trials int `json:"trials"`

	ExpectedDuration float64 `json:"expected_duration"`
	MinDuration      float64 `json:"min_duration"`
	MaxDuration      float64 `json:"max_duration"`
	StdDevDuration   float64 `json:"std_dev_duration"`

	ExpectedCost float64 `json:"expected_cost"`
	MinCost      float64 `json:"min_cost"`
	MaxCost      float64 `json:"max_cost"`
	StdDevCost   float64 `json:"std_dev_cost"`

	Percentiles     Percentiles `json:"percentiles"`
	CostPercentiles Percentiles `json:"cost_percentiles"`

	DurationCurve []DurationPoint    `json:"duration_curve"`
	CostCurve     []CostPoint        `json:"cost_curve"`
	Criticality   map[string]float64 `json:"criticality"`

	AtConfidence    *ConfidenceForecast `json:"at_confidence,omitempty"`
	Materialization Materialization     `json:"materialization,omitempty"`

	Insights []string `json:"insights,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// AggregateOptions carries the context the aggregator needs beyond the outcomes.
type AggregateOptions struct {
	StartDate       time.Time
	ConfidenceLevel float64 // 0 disables the confidence block
	Bins            int
}

// Aggregate reduces trial outcomes to a Result. It is a pure function of its inputs.
func Aggregate(outcomes []TrialOutcome, vars []Variable, opts AggregateOptions) (Result, error) {
	n := len(outcomes)
	if n == 0 {
		return Result{}, fmt.Errorf("%w: no trial outcomes to aggregate", ErrInvalidInput)
	}
	bins := opts.Bins
	if bins <= 0 {
		bins = DefaultCurveBins
	}

	durations := make([]float64, n)
	costs := make([]float64, n)
	for i, o := range outcomes {
		durations[i] = o.DurationDays
		costs[i] = o.TotalCost
	}

	dMean, dStd := meanStdDev(durations)
	cMean, cStd := meanStdDev(costs)

	slices.Sort(durations)
	slices.Sort(costs)

	res := Result{
		Trials:           n,
		ExpectedDuration: math.Round(dMean),
		MinDuration:      math.Round(durations[0]),
		MaxDuration:      math.Round(durations[n-1]),
		StdDevDuration:   math.Round(dStd),
		ExpectedCost:     math.Round(cMean),
		MinCost:          math.Round(costs[0]),
		MaxCost:          math.Round(costs[n-1]),
		StdDevCost:       math.Round(cStd),
		Percentiles:      ladder(durations),
		CostPercentiles:  ladder(costs),
		Criticality:      criticality(outcomes, vars),
	}

	for _, e := range curve(durations, bins) {
		res.DurationCurve = append(res.DurationCurve, DurationPoint{
			Days:        round2(e.edge),
			Date:        opts.StartDate.AddDate(0, 0, int(math.Round(e.edge))).Format(time.DateOnly),
			Probability: e.probability,
		})
	}
	for _, e := range curve(costs, bins) {
		res.CostCurve = append(res.CostCurve, CostPoint{
			Cost:        math.Round(e.edge),
			Probability: e.probability,
		})
	}

	if opts.ConfidenceLevel > 0 && opts.ConfidenceLevel < 1 {
		d := Percentile(durations, opts.ConfidenceLevel*100)
		res.AtConfidence = &ConfidenceForecast{
			Level:          opts.ConfidenceLevel,
			DurationDays:   d,
			CompletionDate: opts.StartDate.AddDate(0, 0, int(math.Ceil(d))).Format(time.DateOnly),
			Cost:           Percentile(costs, opts.ConfidenceLevel*100),
		}
	}

	return res, nil
}

// Percentile returns the nearest-rank p-th percentile of an ascending slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(n))) - 1
	idx = max(0, min(idx, n-1))
	return sorted[idx]
}

func ladder(sorted []float64) Percentiles {
	return Percentiles{
		P10: Percentile(sorted, 10),
		P25: Percentile(sorted, 25),
		P50: Percentile(sorted, 50),
		P75: Percentile(sorted, 75),
		P90: Percentile(sorted, 90),
		P95: Percentile(sorted, 95),
		P99: Percentile(sorted, 99),
	}
}

// meanStdDev returns the arithmetic mean and population standard deviation.
func meanStdDev(values []float64) (float64, float64) {
	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	sq := 0.0
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}

type curveEdge struct {
	edge        float64
	probability float64
}

// curve partitions [min, max] of an ascending slice into equal-width bins and
// returns the cumulative share of values at or below each of the bins+1 edges.
func curve(sorted []float64, bins int) []curveEdge {
	n := len(sorted)
	lo, hi := sorted[0], sorted[n-1]
	step := (hi - lo) / float64(bins)

	edges := make([]curveEdge, 0, bins+1)
	count := 0
	for i := 0; i <= bins; i++ {
		edge := lo + float64(i)*step
		if i == bins {
			edge = hi
		}
		for count < n && sorted[count] <= edge {
			count++
		}
		edges = append(edges, curveEdge{
			edge:        edge,
			probability: round2(float64(count) / float64(n)),
		})
	}
	return edges
}

func criticality(outcomes []TrialOutcome, vars []Variable) map[string]float64 {
	freq := make(map[string]float64)
	n := float64(len(outcomes))
	for _, v := range vars {
		if v.Kind != KindDuration {
			continue
		}
		hits := 0
		for _, o := range outcomes {
			if o.CriticalHits[v.Name] {
				hits++
			}
		}
		freq[v.Name] = round2(float64(hits) / n)
	}
	return freq
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
