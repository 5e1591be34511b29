package engine

import (
	"context"
	"testing"
	"time"

	"mcs-risk/internal/project"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{Scenario: "mild", Distribution: "uniform", Tasks: 8, Risks: 3, Seed: 42, Start: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)}

	a := Generate("p1", cfg)
	b := Generate("p1", cfg)
	assert.Equal(t, a, b)
	assert.Len(t, a.Tasks, 8)
	assert.Len(t, a.Risks, 3)
	assert.Equal(t, "2025-03-03", a.StartDate)
	for _, task := range a.Tasks {
		require.NotNil(t, task.EstimatedHours, "mild projects estimate every task")
		assert.GreaterOrEqual(t, *task.EstimatedHours, 16.0)
	}
}

func TestGenerate_ScenariosStayValid(t *testing.T) {
	for _, scenario := range []string{"mild", "chaos", "drift"} {
		for _, dist := range []string{"uniform", "weibull"} {
			p := Generate("p1", GeneratorConfig{Scenario: scenario, Distribution: dist, Tasks: 30, Risks: 15, Seed: 7})
			assert.NoError(t, project.Validate(p), "%s/%s", scenario, dist)
		}
	}
}

func TestSave_RoundTripsThroughRepository(t *testing.T) {
	dir := t.TempDir()
	p := Generate("tower-x", GeneratorConfig{Scenario: "chaos", Distribution: "weibull", Tasks: 5, Risks: 4, Seed: 1, Start: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)})

	_, err := Save(dir, p)
	require.NoError(t, err)

	loaded, err := project.NewFileRepository(dir).Get(context.Background(), "tower-x")
	require.NoError(t, err)
	assert.Equal(t, p.Risks, loaded.Risks)
	assert.Equal(t, p.StartDate, loaded.StartDate)
	assert.Len(t, loaded.Tasks, 5)
}
