package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mcs-risk/internal/archive"
	"mcs-risk/internal/forecast"
	"mcs-risk/internal/simulation"
	"mcs-risk/internal/visuals"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// maxIterations bounds a single tool call so an agent cannot stall the server.
const maxIterations = 1000000

func (s *Server) handleListProjects(ctx context.Context, _ *mcp.CallToolRequest, _ ListProjectsInput) (*mcp.CallToolResult, ResponseEnvelope, error) {
	projects, err := s.service.Projects(ctx)
	if err != nil {
		return nil, ResponseEnvelope{}, err
	}

	var guidance []string
	if len(projects) == 0 {
		guidance = append(guidance, "No projects were found. Project files (YAML or JSON) must be placed in the configured projects directory.")
	} else {
		guidance = append(guidance, "Call 'run_risk_simulation' with a project_id to forecast its schedule and cost.")
	}
	return nil, WrapResponse(projects, ResponseContext{}, nil, guidance), nil
}

func (s *Server) handleRunSimulation(ctx context.Context, _ *mcp.CallToolRequest, in RunSimulationInput) (*mcp.CallToolResult, ResponseEnvelope, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return nil, ResponseEnvelope{}, fmt.Errorf("project_id is required")
	}

	// The schema rejects iterations below 1, so zero means the argument was omitted.
	var iterations *int
	if in.Iterations != 0 {
		iterations = &in.Iterations
	}

	rec, err := s.service.Run(ctx, forecast.Request{
		ProjectID:       projectID,
		RequestedBy:     in.RequestedBy,
		Iterations:      iterations,
		ConfidenceLevel: in.ConfidenceLevel,
		Seed:            in.Seed,
	})
	if err != nil {
		log.Error().Err(err).Str("project", projectID).Msg("Risk simulation failed")
		return nil, ResponseEnvelope{}, toolError(err)
	}

	guidance := []string{
		"Percentiles are nearest-rank values in days (duration) or currency units (cost). P50 is a coin toss; quote P90 or P95 for commitments.",
		fmt.Sprintf("Criticality is the share of trials in which an item exceeded %gx its most likely value. It ranks overrun exposure; it is not a critical-path analysis.", s.service.CriticalityFactor()),
		fmt.Sprintf("This run is archived as '%s'. Use 'get_simulation' to revisit it.", rec.ID),
	}
	env := WrapResponse(rec.Result, ResponseContext{ProjectID: rec.ProjectID, RunID: rec.ID}, rec.Result.Warnings, guidance)
	s.attachCharts(&env, rec.Result)
	return nil, env, nil
}

func (s *Server) handleListSimulations(_ context.Context, _ *mcp.CallToolRequest, in ListSimulationsInput) (*mcp.CallToolResult, ResponseEnvelope, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return nil, ResponseEnvelope{}, fmt.Errorf("project_id is required")
	}

	runs, err := s.service.History(projectID)
	if err != nil {
		return nil, ResponseEnvelope{}, toolError(err)
	}

	var guidance []string
	if len(runs) == 0 {
		guidance = append(guidance, "No simulations have been archived for this project yet. Call 'run_risk_simulation' first.")
	}
	return nil, WrapResponse(runs, ResponseContext{ProjectID: projectID}, nil, guidance), nil
}

func (s *Server) handleGetSimulation(_ context.Context, _ *mcp.CallToolRequest, in GetSimulationInput) (*mcp.CallToolResult, ResponseEnvelope, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return nil, ResponseEnvelope{}, fmt.Errorf("project_id is required")
	}

	rec, err := s.service.Record(projectID, strings.TrimSpace(in.RunID))
	if err != nil {
		return nil, ResponseEnvelope{}, toolError(err)
	}

	env := WrapResponse(rec, ResponseContext{ProjectID: rec.ProjectID, RunID: rec.ID}, rec.Result.Warnings, nil)
	s.attachCharts(&env, rec.Result)
	return nil, env, nil
}

func (s *Server) attachCharts(env *ResponseEnvelope, res simulation.Result) {
	if !s.enableMermaid {
		return
	}
	charts := map[string]string{
		"percentiles":    visuals.GeneratePercentileChart(res.Percentiles),
		"duration_curve": visuals.GenerateDurationCDF(res.DurationCurve),
		"cost_curve":     visuals.GenerateCostCDF(res.CostCurve),
		"criticality":    visuals.GenerateCriticalityChart(res.Criticality),
	}
	for k, v := range charts {
		if v == "" {
			delete(charts, k)
		}
	}
	if len(charts) > 0 {
		env.Charts = charts
		env.Guidance = append(env.Guidance, "Render the Mermaid charts in 'charts' verbatim when presenting the forecast.")
	}
}

// toolError turns domain errors into messages an agent can act on.
func toolError(err error) error {
	switch {
	case errors.Is(err, forecast.ErrProjectNotFound):
		return fmt.Errorf("%v. Call 'list_projects' to see the available project IDs", err)
	case errors.Is(err, archive.ErrNotFound):
		return fmt.Errorf("%v. Call 'list_simulations' to see the archived runs", err)
	case errors.Is(err, simulation.ErrInvalidInput):
		return fmt.Errorf("the project data cannot be simulated: %v", err)
	default:
		return err
	}
}
