package simulation

import "fmt"

const (
	// DefaultImpactCostUnit converts a 1-5 impact rating into a cost exposure (MYR).
	DefaultImpactCostUnit = 10000.0

	taskOptimisticFactor  = 0.8
	taskPessimisticFactor = 1.5
)

// TaskEstimate is the slice of a project task the simulation cares about.
type TaskEstimate struct {
	Title          string
	EstimatedHours *float64
}

// RiskEntry is one row of a project's risk register.
type RiskEntry struct {
	Title       string
	Probability float64 // 0..1
	Impact      int     // ordinal 1..5
}

// Assembler turns project tasks and risks into stochastic variables.
type Assembler struct {
	ImpactCostUnit float64
}

// NewAssembler returns an Assembler using costUnit per impact point.
// A non-positive costUnit falls back to DefaultImpactCostUnit.
func NewAssembler(costUnit float64) Assembler {
	if costUnit <= 0 {
		costUnit = DefaultImpactCostUnit
	}
	return Assembler{ImpactCostUnit: costUnit}
}

// Assemble emits one TRIANGULAR duration variable per task with a positive
// estimate and one UNIFORM cost-risk variable per risk with positive
// probability and impact. Tasks come first, both in input order. Repeated
// names get a " #2", " #3" suffix so every variable keeps its own
// criticality entry.
func (a Assembler) Assemble(tasks []TaskEstimate, risks []RiskEntry) []Variable {
	vars := make([]Variable, 0, len(tasks)+len(risks))
	seen := make(map[string]bool, len(tasks)+len(risks))

	for _, t := range tasks {
		if t.EstimatedHours == nil || *t.EstimatedHours <= 0 || !isFinite(*t.EstimatedHours) {
			continue
		}
		d := *t.EstimatedHours
		vars = append(vars, Variable{
			Name:         uniqueName(seen, fmt.Sprintf("%s Duration", t.Title)),
			Kind:         KindDuration,
			Distribution: DistTriangular,
			Min:          taskOptimisticFactor * d,
			MostLikely:   ptr(d),
			Max:          taskPessimisticFactor * d,
		})
	}

	for _, r := range risks {
		if r.Probability <= 0 || r.Impact <= 0 {
			continue
		}
		vars = append(vars, Variable{
			Name:         uniqueName(seen, fmt.Sprintf("Risk: %s", r.Title)),
			Kind:         KindCostRisk,
			Distribution: DistUniform,
			Min:          0,
			Max:          float64(r.Impact) * a.ImpactCostUnit,
			Probability:  ptr(r.Probability),
		})
	}

	return vars
}

func uniqueName(seen map[string]bool, name string) string {
	candidate := name
	for n := 2; seen[candidate]; n++ {
		candidate = fmt.Sprintf("%s #%d", name, n)
	}
	seen[candidate] = true
	return candidate
}
