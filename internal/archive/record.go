package archive

import (
	"time"

	"mcs-risk/internal/simulation"
)

// Record is the audit entry of one simulation run. Records are written once and
// never updated in place.
type Record struct {
	ID              string                     `json:"id"`
	ProjectID       string                     `json:"project_id"`
	ProjectName     string                     `json:"project_name,omitempty"`
	RunBy           string                     `json:"run_by"`
	RunAt           time.Time                  `json:"run_at"`
	Iterations      int                        `json:"iterations"`
	ConfidenceLevel float64                    `json:"confidence_level"`
	Materialization simulation.Materialization `json:"materialization"`
	Seed            int64                      `json:"seed"`
	BaselineCost    float64                    `json:"baseline_cost"`
	StartDate       string                     `json:"start_date"`
	Variables       []simulation.Variable      `json:"variables"`
	Result          simulation.Result          `json:"result"`
}

// Summary is the listing view of a Record.
type Summary struct {
	ID               string    `json:"id"`
	RunBy            string    `json:"run_by"`
	RunAt            time.Time `json:"run_at"`
	Iterations       int       `json:"iterations"`
	ExpectedDuration float64   `json:"expected_duration"`
	P90Duration      float64   `json:"p90_duration"`
	ExpectedCost     float64   `json:"expected_cost"`
}

// Summarize returns the listing view of r.
func (r Record) Summarize() Summary {
	return Summary{
		ID:               r.ID,
		RunBy:            r.RunBy,
		RunAt:            r.RunAt,
		Iterations:       r.Iterations,
		ExpectedDuration: r.Result.ExpectedDuration,
		P90Duration:      r.Result.Percentiles.P90,
		ExpectedCost:     r.Result.ExpectedCost,
	}
}
