package mcp

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListProjectsInput takes no arguments.
type ListProjectsInput struct{}

// RunSimulationInput is the argument set of run_risk_simulation.
type RunSimulationInput struct {
	ProjectID       string  `json:"project_id" jsonschema:"ID of the project to forecast (see list_projects)"`
	RequestedBy     string  `json:"requested_by,omitempty" jsonschema:"Who asked for the run, recorded in the archive"`
	Iterations      int     `json:"iterations,omitempty" jsonschema:"Number of Monte-Carlo trials. Defaults to the server configuration (usually 10000)"`
	ConfidenceLevel float64 `json:"confidence_level,omitempty" jsonschema:"Confidence level for the headline forecast, e.g. 0.85 or 0.95"`
	Seed            int64   `json:"seed,omitempty" jsonschema:"Fixed random seed for a reproducible run. 0 picks a fresh seed"`
}

// ListSimulationsInput is the argument set of list_simulations.
type ListSimulationsInput struct {
	ProjectID string `json:"project_id" jsonschema:"ID of the project whose archived runs to list"`
}

// GetSimulationInput is the argument set of get_simulation.
type GetSimulationInput struct {
	ProjectID string `json:"project_id" jsonschema:"ID of the project"`
	RunID     string `json:"run_id,omitempty" jsonschema:"ID of the archived run. Omit for the latest run"`
}

func (s *Server) registerTools() error {
	runSchema, err := runSimulationSchema()
	if err != nil {
		return err
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_projects",
		Description: "List the projects available for risk simulation, with their start date, budget, and number of tasks and risks. Guidance: call 'run_risk_simulation' next with one of the returned IDs.",
	}, s.handleListProjects)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "run_risk_simulation",
		Description: "Run a Monte-Carlo simulation of a project's schedule and cost. Task estimates become triangular duration ranges and risk register entries become cost exposures. " +
			"Returns expected values, percentiles, cumulative probability curves and per-item criticality. The run is archived.\n\n" +
			"STRICT GUARDRAIL: report the numbers the tool returns. DO NOT invent probability estimates if the tool fails, and always relay the warnings.",
		InputSchema: runSchema,
	}, s.handleRunSimulation)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_simulations",
		Description: "List the archived simulation runs of a project, newest first.",
	}, s.handleListSimulations)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_simulation",
		Description: "Fetch an archived simulation run in full, including the variables it was built from. Omit run_id for the latest run.",
	}, s.handleGetSimulation)

	return nil
}

// runSimulationSchema tightens the inferred schema with the engine's input bounds.
func runSimulationSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[RunSimulationInput](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build run_risk_simulation schema: %w", err)
	}

	if p := schema.Properties["iterations"]; p != nil {
		p.Minimum = jsonschema.Ptr(1.0)
		p.Maximum = jsonschema.Ptr(float64(maxIterations))
	}
	if p := schema.Properties["confidence_level"]; p != nil {
		p.ExclusiveMinimum = jsonschema.Ptr(0.0)
		p.ExclusiveMaximum = jsonschema.Ptr(1.0)
	}
	return schema, nil
}
