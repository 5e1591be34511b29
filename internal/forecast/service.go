package forecast

import (
	"context"
	"fmt"

	"mcs-risk/internal/archive"
	"mcs-risk/internal/config"
	"mcs-risk/internal/project"
	"mcs-risk/internal/simulation"

	"github.com/rs/zerolog/log"
)

// ErrProjectNotFound is returned when the requested project does not exist.
var ErrProjectNotFound = project.ErrNotFound

// Request describes one forecasting run. A nil Iterations and zero ConfidenceLevel
// or Seed fall back to the configured defaults.
type Request struct {
	ProjectID       string
	RequestedBy     string
	Iterations      *int
	ConfidenceLevel float64
	Seed            int64
}

// Service resolves projects, runs the engine and archives every result.
type Service struct {
	projects project.Repository
	archive  *archive.Store
	cfg      config.SimulationConfig
}

func NewService(projects project.Repository, store *archive.Store, cfg config.SimulationConfig) *Service {
	return &Service{projects: projects, archive: store, cfg: cfg}
}

// CriticalityFactor is the overrun multiple the engine counts as a critical hit.
func (s *Service) CriticalityFactor() float64 {
	return simulation.NewRunner(s.cfg.RunnerConfig()).Config().CriticalityFactor
}

// Projects lists the projects a forecast can be run for.
func (s *Service) Projects(ctx context.Context) ([]project.Summary, error) {
	return s.projects.List(ctx)
}

// History lists the archived runs of a project, newest first.
func (s *Service) History(projectID string) ([]archive.Summary, error) {
	return s.archive.List(projectID)
}

// Record returns an archived run. An empty id selects the latest run.
func (s *Service) Record(projectID, id string) (archive.Record, error) {
	if id == "" {
		return s.archive.Latest(projectID)
	}
	return s.archive.Get(projectID, id)
}

// Run executes a simulation for the requested project and archives the outcome.
func (s *Service) Run(ctx context.Context, req Request) (archive.Record, error) {
	p, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return archive.Record{}, fmt.Errorf("failed to resolve project: %w", err)
	}

	iterations := s.cfg.Iterations
	if req.Iterations != nil {
		iterations = *req.Iterations
	}
	confidence := req.ConfidenceLevel
	if confidence == 0 {
		confidence = s.cfg.ConfidenceLevel
	}

	vars := simulation.NewAssembler(s.cfg.ImpactCostUnit).Assemble(p.TaskEstimates(), p.RiskEntries())
	if err := simulation.ValidateAll(vars); err != nil {
		return archive.Record{}, err
	}

	engine := simulation.NewEngine(s.cfg.RunnerConfig())
	if seed := firstNonZero(req.Seed, s.cfg.Seed); seed != 0 {
		engine.SetSeed(seed)
	}
	seed := engine.Seed()

	log.Info().
		Str("project", p.ID).
		Str("user", req.RequestedBy).
		Int("iterations", iterations).
		Int("variables", len(vars)).
		Msg("Running risk simulation")

	res, err := engine.Run(ctx, vars, simulation.RunParams{
		Iterations:      iterations,
		BaselineCost:    p.EstimatedBudget,
		StartDate:       p.Start(),
		ConfidenceLevel: confidence,
	})
	if err != nil {
		return archive.Record{}, err
	}

	return s.archive.Append(archive.Record{
		ProjectID:       p.ID,
		ProjectName:     p.Name,
		RunBy:           req.RequestedBy,
		Iterations:      iterations,
		ConfidenceLevel: confidence,
		Materialization: res.Materialization,
		Seed:            seed,
		BaselineCost:    p.EstimatedBudget,
		StartDate:       p.StartDate,
		Variables:       vars,
		Result:          res,
	})
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
