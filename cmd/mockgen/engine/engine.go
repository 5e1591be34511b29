package engine

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"mcs-risk/internal/project"

	"gopkg.in/yaml.v3"
)

type GeneratorConfig struct {
	Scenario     string // "mild", "chaos" or "drift"
	Distribution string // "uniform" or "weibull"
	Tasks        int
	Risks        int
	Seed         int64
	Start        time.Time
}

var riskTitles = []string{
	"Flood", "Supplier insolvency", "Permit delay", "Labour shortage", "Steel price hike",
	"Crane breakdown", "Design change", "Ground contamination", "Monsoon season", "Inspection failure",
}

var taskTitles = []string{
	"Site clearing", "Piling", "Foundation", "Ground slab", "Columns", "Upper slabs",
	"Roofing", "Brickwork", "Plumbing", "Electrical", "Plastering", "Tiling", "Painting", "Handover",
}

// Generate builds a synthetic project whose shape follows the scenario.
func Generate(id string, cfg GeneratorConfig) project.Project {
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}

	p := project.Project{
		ID:        id,
		Name:      fmt.Sprintf("Synthetic %s project", cfg.Scenario),
		StartDate: cfg.Start.Format(time.DateOnly),
	}

	for i := 0; i < cfg.Tasks; i++ {
		k, lambda := 2.5, 60.0 // Mild: most tasks take one to two working weeks
		switch cfg.Scenario {
		case "chaos":
			k = 0.8
		case "drift":
			ratio := float64(i) / float64(max(cfg.Tasks, 1))
			k = 2.5 - (1.7 * ratio)
			lambda = 60 + (60 * ratio)
		}

		var hours float64
		if cfg.Distribution == "weibull" {
			hours = weibullSample(rng, k, lambda)
		} else {
			hours = 16 + rng.Float64()*80
			if cfg.Scenario == "chaos" && rng.Float64() < 0.2 {
				hours += 80 + rng.Float64()*160
			}
			if cfg.Scenario == "drift" && i > cfg.Tasks/2 {
				hours *= 2
			}
		}

		task := project.Task{Title: pick(taskTitles, i)}
		// Chaos leaves a share of the schedule unestimated
		if cfg.Scenario != "chaos" || rng.Float64() >= 0.25 {
			h := math.Round(hours)
			task.EstimatedHours = &h
		}
		p.Tasks = append(p.Tasks, task)
		p.EstimatedBudget += math.Round(hours) * 150
	}

	for i := 0; i < cfg.Risks; i++ {
		probability := 0.05 + rng.Float64()*0.25
		impact := 1 + rng.Intn(3)
		if cfg.Scenario == "chaos" {
			probability = 0.2 + rng.Float64()*0.6
			impact = 2 + rng.Intn(4)
		}
		p.Risks = append(p.Risks, project.Risk{
			Title:       pick(riskTitles, i),
			Probability: math.Round(probability*100) / 100,
			Impact:      impact,
		})
	}

	return p
}

func pick(titles []string, i int) string {
	if i < len(titles) {
		return titles[i]
	}
	return fmt.Sprintf("%s %d", titles[i%len(titles)], i/len(titles)+1)
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save validates p and writes it as <outDir>/<id>.yaml.
func Save(outDir string, p project.Project) (string, error) {
	if err := project.Validate(p); err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode project: %w", err)
	}

	path := filepath.Join(outDir, p.ID+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
