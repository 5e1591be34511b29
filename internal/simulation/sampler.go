package simulation

import "math"

// Source is the random stream consumed by the sampler. *rand.Rand satisfies it.
type Source interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
}

// Sampler draws realisations of a Variable.
type Sampler struct {
	// ClampNormal bounds NORMAL draws to [Min, Max] when the variable carries a range.
	ClampNormal bool
}

// Sample draws one value for v from src.
// Degenerate parameterisations fall back to a deterministic value instead of failing.
func (s Sampler) Sample(src Source, v Variable) float64 {
	switch v.Distribution {
	case DistUniform:
		return v.Min + src.Float64()*(v.Max-v.Min)
	case DistTriangular:
		return sampleTriangular(src, v.Min, v.Mode(), v.Max)
	case DistNormal:
		x := sampleNormal(src, v.MeanOrDefault(), v.StdDevOrDefault())
		if s.ClampNormal && v.HasBounds() {
			x = math.Max(v.Min, math.Min(v.Max, x))
		}
		return x
	case DistPERT:
		return samplePERT(src, v.Min, v.Mode(), v.Max)
	default:
		return v.Mode()
	}
}

// sampleTriangular uses the inverse CDF of the triangular distribution.
func sampleTriangular(src Source, lo, mode, hi float64) float64 {
	width := hi - lo
	if width <= 0 {
		return mode
	}
	u := src.Float64()
	fc := (mode - lo) / width
	if u < fc {
		return lo + math.Sqrt(u*width*(mode-lo))
	}
	return hi - math.Sqrt((1-u)*width*(hi-mode))
}

// sampleNormal applies the Box-Muller transform. Draws of exactly 0 are rejected
// so that ln(u1) stays finite.
func sampleNormal(src Source, mean, stdDev float64) float64 {
	u1 := nonZero(src)
	u2 := nonZero(src)
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + z*stdDev
}

// samplePERT approximates a Beta(alpha, beta) draw scaled to [lo, hi].
//
// Shape parameters come from the usual PERT moment match on
// mean = (lo + 4*mode + hi) / 6. The ratio x/(x+y) with x = U1^(1/alpha) and
// y = U2^(1/beta) is not an exact Beta sampler and is biased towards the centre
// for shapes above 1. Do not quote its draws as exact Beta quantiles.
func samplePERT(src Source, lo, mode, hi float64) float64 {
	width := hi - lo
	if width <= 0 {
		return mode
	}
	mean := (lo + 4*mode + hi) / 6
	alpha := 6 * (mean - lo) / width
	beta := 6 * (hi - mean) / width

	x := math.Pow(src.Float64(), 1/alpha)
	y := math.Pow(src.Float64(), 1/beta)
	if x+y == 0 {
		return mode
	}
	return lo + width*x/(x+y)
}

func nonZero(src Source) float64 {
	for {
		if u := src.Float64(); u > 0 {
			return u
		}
	}
}
