package project

import (
	"context"
	"errors"
	"time"

	"mcs-risk/internal/simulation"
)

// ErrNotFound is returned when a referenced project does not exist.
var ErrNotFound = errors.New("project not found")

// Project is the inbound record a simulation is built from.
type Project struct {
	ID              string  `yaml:"id" json:"id" validate:"required"`
	Name            string  `yaml:"name" json:"name"`
	StartDate       string  `yaml:"start_date" json:"start_date" validate:"required,datetime=2006-01-02"`
	EstimatedBudget float64 `yaml:"estimated_budget" json:"estimated_budget" validate:"gte=0"`
	Tasks           []Task  `yaml:"tasks" json:"tasks" validate:"dive"`
	Risks           []Risk  `yaml:"risks" json:"risks" validate:"dive"`
}

// Task is a schedule item. EstimatedHours is nil when no estimate has been made.
type Task struct {
	Title          string   `yaml:"title" json:"title" validate:"required"`
	EstimatedHours *float64 `yaml:"estimated_hours" json:"estimated_hours"`
}

// Risk is an entry of the project's risk register.
type Risk struct {
	Title       string  `yaml:"title" json:"title" validate:"required"`
	Probability float64 `yaml:"probability" json:"probability" validate:"gte=0,lte=1"`
	Impact      int     `yaml:"impact" json:"impact" validate:"gte=0,lte=5"`
}

// Summary is the listing view of a project.
type Summary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	StartDate       string  `json:"start_date"`
	EstimatedBudget float64 `json:"estimated_budget"`
	Tasks           int     `json:"tasks"`
	Risks           int     `json:"risks"`
}

// Repository supplies project records to the forecasting service.
type Repository interface {
	Get(ctx context.Context, id string) (Project, error)
	List(ctx context.Context) ([]Summary, error)
}

// Start parses StartDate. Validated projects always parse.
func (p Project) Start() time.Time {
	t, err := time.Parse(time.DateOnly, p.StartDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TaskEstimates maps tasks to the simulation's inbound type.
func (p Project) TaskEstimates() []simulation.TaskEstimate {
	out := make([]simulation.TaskEstimate, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		out = append(out, simulation.TaskEstimate{Title: t.Title, EstimatedHours: t.EstimatedHours})
	}
	return out
}

// RiskEntries maps the risk register to the simulation's inbound type.
func (p Project) RiskEntries() []simulation.RiskEntry {
	out := make([]simulation.RiskEntry, 0, len(p.Risks))
	for _, r := range p.Risks {
		out = append(out, simulation.RiskEntry{Title: r.Title, Probability: r.Probability, Impact: r.Impact})
	}
	return out
}

// Summarize returns the listing view of p.
func (p Project) Summarize() Summary {
	return Summary{
		ID:              p.ID,
		Name:            p.Name,
		StartDate:       p.StartDate,
		EstimatedBudget: p.EstimatedBudget,
		Tasks:           len(p.Tasks),
		Risks:           len(p.Risks),
	}
}
