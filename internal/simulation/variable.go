package simulation

import (
	"fmt"
	"math"
)

// Kind determines how a sampled value is aggregated into a trial.
type Kind string

const (
	KindDuration Kind = "DURATION"
	KindCostRisk Kind = "COST_RISK"
)

// Distribution names the probability family a Variable is sampled from.
type Distribution string

const (
	DistUniform    Distribution = "UNIFORM"
	DistTriangular Distribution = "TRIANGULAR"
	DistNormal     Distribution = "NORMAL"
	DistPERT       Distribution = "PERT"
)

// Variable is one uncertain quantity feeding the simulation.
// Optional parameters are pointers; nil means "use the documented default".
type Variable struct {
	Name         string       `json:"name"`
	Kind         Kind         `json:"kind"`
	Distribution Distribution `json:"distribution"`
	Min          float64      `json:"min"`
	Max          float64      `json:"max"`
	MostLikely   *float64     `json:"most_likely,omitempty"`
	Mean         *float64     `json:"mean,omitempty"`
	StdDev       *float64     `json:"std_dev,omitempty"`

	// Probability is the declared likelihood of a cost risk. Only read when the
	// runner uses the declared materialization policy.
	Probability *float64 `json:"probability,omitempty"`
}

// Mode returns MostLikely, or the bound midpoint when it is absent.
func (v Variable) Mode() float64 {
	if v.MostLikely != nil {
		return *v.MostLikely
	}
	return (v.Min + v.Max) / 2
}

// MeanOrDefault returns Mean, or the bound midpoint when it is absent.
func (v Variable) MeanOrDefault() float64 {
	if v.Mean != nil {
		return *v.Mean
	}
	return (v.Min + v.Max) / 2
}

// StdDevOrDefault returns StdDev, or range/6 when it is absent.
func (v Variable) StdDevOrDefault() float64 {
	if v.StdDev != nil {
		return *v.StdDev
	}
	return (v.Max - v.Min) / 6
}

// HasBounds reports whether the variable carries a non-degenerate [Min, Max] range.
func (v Variable) HasBounds() bool {
	return v.Max > v.Min
}

// Validate rejects parameterisations that would otherwise poison the trial loop
// with NaN or Inf values.
func (v Variable) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("%w: variable name is empty", ErrInvalidInput)
	}
	switch v.Kind {
	case KindDuration, KindCostRisk:
	default:
		return fmt.Errorf("%w: variable %q has unknown kind %q", ErrInvalidInput, v.Name, v.Kind)
	}

	if !isFinite(v.Min) || !isFinite(v.Max) {
		return fmt.Errorf("%w: variable %q has non-finite bounds", ErrInvalidInput, v.Name)
	}
	if v.Min > v.Max {
		return fmt.Errorf("%w: variable %q has inverted range (min %.2f > max %.2f)", ErrInvalidInput, v.Name, v.Min, v.Max)
	}

	if v.MostLikely != nil {
		ml := *v.MostLikely
		if !isFinite(ml) {
			return fmt.Errorf("%w: variable %q has non-finite most likely value", ErrInvalidInput, v.Name)
		}
		if v.Distribution != DistNormal && (ml < v.Min || ml > v.Max) {
			return fmt.Errorf("%w: variable %q most likely %.2f is outside [%.2f, %.2f]", ErrInvalidInput, v.Name, ml, v.Min, v.Max)
		}
	}
	if v.Mean != nil && !isFinite(*v.Mean) {
		return fmt.Errorf("%w: variable %q has non-finite mean", ErrInvalidInput, v.Name)
	}
	if v.StdDev != nil && (!isFinite(*v.StdDev) || *v.StdDev < 0) {
		return fmt.Errorf("%w: variable %q has invalid standard deviation", ErrInvalidInput, v.Name)
	}
	if v.Probability != nil {
		p := *v.Probability
		if !isFinite(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: variable %q probability %.2f is outside [0, 1]", ErrInvalidInput, v.Name, p)
		}
	}
	return nil
}

// ValidateAll validates every variable and returns the first failure.
// Names must be unique since criticality is keyed by name.
func ValidateAll(vars []Variable) error {
	names := make(map[string]bool, len(vars))
	for _, v := range vars {
		if err := v.Validate(); err != nil {
			return err
		}
		if names[v.Name] {
			return fmt.Errorf("%w: duplicate variable name %q", ErrInvalidInput, v.Name)
		}
		names[v.Name] = true
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func ptr(f float64) *float64 {
	return &f
}
