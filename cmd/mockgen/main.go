package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"mcs-risk/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, drift")
	distribution := flag.String("distribution", "uniform", "Distribution of task hours: uniform, weibull")
	outDir := flag.String("out", "./projects", "Output directory for project files")
	id := flag.String("id", "mcstest-0", "Project ID")
	tasks := flag.Int("tasks", 12, "Number of tasks to generate")
	risks := flag.Int("risks", 5, "Number of risks to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Tasks:        *tasks,
		Risks:        *risks,
		Seed:         *seed,
		Start:        time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Tasks: %d, Risks: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Tasks, cfg.Risks, *outDir)

	path, err := engine.Save(*outDir, engine.Generate(*id, cfg))
	if err != nil {
		fmt.Printf("Failed to save mock project: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done: %s\n", path)
}
