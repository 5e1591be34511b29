package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mcs-risk/internal/archive"
	"mcs-risk/internal/config"
	"mcs-risk/internal/forecast"
	"mcs-risk/internal/project"
	"mcs-risk/internal/simulation"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const towerYAML = `id: tower-a
name: Tower A
start_date: "2025-03-03"
estimated_budget: 100000
tasks:
  - title: Structure
    estimated_hours: 240
risks:
  - title: Flood
    probability: 0.2
    impact: 4
`

type runEnvelope struct {
	Context  ResponseContext   `json:"context"`
	Data     simulation.Result `json:"data"`
	Warnings []string          `json:"warnings"`
	Guidance []string          `json:"guidance"`
	Charts   map[string]string `json:"charts"`
}

func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var output T
	if err := json.Unmarshal(data, &output); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return output
}

func newTestSession(t *testing.T, enableMermaid bool, opts ...func(*config.SimulationConfig)) *mcp.ClientSession {
	t.Helper()

	projectsDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectsDir, "tower-a.yaml"), []byte(towerYAML), 0644); err != nil {
		t.Fatalf("write project: %v", err)
	}
	cfg := config.SimulationConfig{
		Iterations:          2000,
		ConfidenceLevel:     0.95,
		ImpactCostUnit:      simulation.DefaultImpactCostUnit,
		Materialization:     string(simulation.MaterializeFixed),
		MaterializationRate: simulation.DefaultMaterializationRate,
		CriticalityFactor:   simulation.DefaultCriticalityFactor,
		Workers:             2,
		ClampNormal:         true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	svc := forecast.NewService(project.NewFileRepository(projectsDir), archive.NewStore(t.TempDir()), cfg)

	server, err := NewServer(svc, enableMermaid)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-serveErr:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
		session.Close()
	})
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	return res
}

func TestServer_ListsTools(t *testing.T) {
	session := newTestSession(t, false)

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}

	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"list_projects", "run_risk_simulation", "list_simulations", "get_simulation"} {
		if !names[want] {
			t.Errorf("Expected tool %q to be registered, got %v", want, names)
		}
	}
}

func TestServer_ListProjects(t *testing.T) {
	session := newTestSession(t, false)

	res := callTool(t, session, "list_projects", map[string]any{})
	if res.IsError {
		t.Fatalf("Expected success, got %+v", res.Content)
	}

	env := decodeStructuredContent[struct {
		Data []project.Summary `json:"data"`
	}](t, res.StructuredContent)
	if len(env.Data) != 1 || env.Data[0].ID != "tower-a" {
		t.Errorf("Expected the tower-a project, got %+v", env.Data)
	}
}

func TestServer_RunAndFetchSimulation(t *testing.T) {
	session := newTestSession(t, true)

	res := callTool(t, session, "run_risk_simulation", map[string]any{
		"project_id":   "tower-a",
		"requested_by": "user-7",
		"seed":         42,
	})
	if res.IsError {
		t.Fatalf("Expected success, got %+v", res.Content)
	}

	run := decodeStructuredContent[runEnvelope](t, res.StructuredContent)
	if run.Context.RunID == "" || run.Context.ProjectID != "tower-a" {
		t.Errorf("Expected run context, got %+v", run.Context)
	}
	if run.Data.Trials != 2000 {
		t.Errorf("Expected 2000 trials from the configured default, got %d", run.Data.Trials)
	}
	if run.Data.AtConfidence == nil || run.Data.AtConfidence.Level != 0.95 {
		t.Errorf("Expected a 95%% confidence forecast, got %+v", run.Data.AtConfidence)
	}
	foundFixed := false
	for _, w := range run.Warnings {
		if strings.Contains(w, "fixed 30% rate") {
			foundFixed = true
		}
	}
	if !foundFixed {
		t.Errorf("Expected the fixed materialization warning, got %v", run.Warnings)
	}
	if !strings.Contains(run.Charts["duration_curve"], "xychart-beta") {
		t.Errorf("Expected a duration chart, got %v", run.Charts)
	}

	latest := callTool(t, session, "get_simulation", map[string]any{"project_id": "tower-a"})
	if latest.IsError {
		t.Fatalf("Expected success, got %+v", latest.Content)
	}
	got := decodeStructuredContent[struct {
		Context ResponseContext `json:"context"`
		Data    archive.Record  `json:"data"`
	}](t, latest.StructuredContent)
	if got.Data.ID != run.Context.RunID || got.Data.RunBy != "user-7" || got.Data.Seed != 42 {
		t.Errorf("Expected the archived run %s, got %+v", run.Context.RunID, got.Data)
	}

	history := callTool(t, session, "list_simulations", map[string]any{"project_id": "tower-a"})
	runs := decodeStructuredContent[struct {
		Data []archive.Summary `json:"data"`
	}](t, history.StructuredContent)
	if len(runs.Data) != 1 {
		t.Errorf("Expected one archived run, got %d", len(runs.Data))
	}
}

func TestServer_GuidanceUsesConfiguredCriticalityFactor(t *testing.T) {
	session := newTestSession(t, false, func(cfg *config.SimulationConfig) {
		cfg.CriticalityFactor = 1.35
	})

	res := callTool(t, session, "run_risk_simulation", map[string]any{"project_id": "tower-a", "iterations": 200})
	if res.IsError {
		t.Fatalf("Expected success, got %+v", res.Content)
	}
	run := decodeStructuredContent[runEnvelope](t, res.StructuredContent)
	guidance := strings.Join(run.Guidance, "\n")
	if !strings.Contains(guidance, "exceeded 1.35x its most likely value") {
		t.Errorf("Expected guidance to quote the 1.35x factor, got %q", guidance)
	}
	if strings.Contains(guidance, "1.2x") || strings.Contains(guidance, "P85") {
		t.Errorf("Expected no stale factor or unreported percentile, got %q", guidance)
	}
	if run.Data.Trials != 200 {
		t.Errorf("Expected 200 trials, got %d", run.Data.Trials)
	}
}

func TestServer_ChartsDisabled(t *testing.T) {
	session := newTestSession(t, false)

	res := callTool(t, session, "run_risk_simulation", map[string]any{"project_id": "tower-a", "iterations": 500})
	run := decodeStructuredContent[runEnvelope](t, res.StructuredContent)
	if len(run.Charts) != 0 {
		t.Errorf("Expected no charts when Mermaid is disabled, got %v", run.Charts)
	}
}

func TestServer_ToolErrors(t *testing.T) {
	session := newTestSession(t, false)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"UnknownProject", "run_risk_simulation", map[string]any{"project_id": "missing"}, "list_projects"},
		{"BlankProject", "run_risk_simulation", map[string]any{"project_id": "  "}, "project_id is required"},
		{"NoRuns", "get_simulation", map[string]any{"project_id": "tower-a"}, "list_simulations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, session, tt.tool, tt.args)
			if !res.IsError {
				t.Fatalf("Expected a tool error")
			}
			text, ok := res.Content[0].(*mcp.TextContent)
			if !ok || !strings.Contains(text.Text, tt.want) {
				t.Errorf("Expected error mentioning %q, got %+v", tt.want, res.Content)
			}
		})
	}
}

func TestServer_RejectsOutOfRangeArguments(t *testing.T) {
	session := newTestSession(t, false)

	for _, args := range []map[string]any{
		{"project_id": "tower-a", "confidence_level": 1.5},
		{"project_id": "tower-a", "iterations": -5},
	} {
		if _, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "run_risk_simulation", Arguments: args}); err == nil {
			t.Errorf("Expected schema validation to reject %v", args)
		}
	}
}
