package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"mcs-risk/internal/simulation"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// SimulationConfig holds the engine defaults applied when a request leaves a field unset.
type SimulationConfig struct {
	Iterations          int     `validate:"gt=0"`
	ConfidenceLevel     float64 `validate:"gt=0,lt=1"`
	ImpactCostUnit      float64 `validate:"gt=0"`
	Materialization     string  `validate:"oneof=fixed declared"`
	MaterializationRate float64 `validate:"gt=0,lte=1"`
	CriticalityFactor   float64 `validate:"gt=0"`
	Workers             int     `validate:"gte=0"`
	ClampNormal         bool
	Seed                int64 // 0 seeds from the clock
}

// RunnerConfig maps the defaults onto the engine's runner settings.
func (c SimulationConfig) RunnerConfig() simulation.RunnerConfig {
	return simulation.RunnerConfig{
		Workers:             c.Workers,
		CriticalityFactor:   c.CriticalityFactor,
		Materialization:     simulation.Materialization(c.Materialization),
		MaterializationRate: c.MaterializationRate,
		Sampler:             simulation.Sampler{ClampNormal: c.ClampNormal},
	}
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath            string `validate:"required"`
	LogDir              string
	ProjectsDir         string
	ArchiveDir          string
	EnableMermaidCharts bool
	Simulation          SimulationConfig
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	cfg := &AppConfig{
		DataPath:            dataPath,
		LogDir:              filepath.Join(dataPath, "logs"),
		ProjectsDir:         getEnv("PROJECTS_PATH", filepath.Join(dataPath, "projects")),
		ArchiveDir:          filepath.Join(dataPath, "simulations"),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		Simulation: SimulationConfig{
			Iterations:          getEnvInt("SIM_ITERATIONS", simulation.DefaultIterations),
			ConfidenceLevel:     getEnvFloat("SIM_CONFIDENCE_LEVEL", 0.95),
			ImpactCostUnit:      getEnvFloat("SIM_IMPACT_COST_UNIT", simulation.DefaultImpactCostUnit),
			Materialization:     getEnv("SIM_RISK_MATERIALIZATION", string(simulation.MaterializeFixed)),
			MaterializationRate: getEnvFloat("SIM_MATERIALIZATION_RATE", simulation.DefaultMaterializationRate),
			CriticalityFactor:   getEnvFloat("SIM_CRITICALITY_FACTOR", simulation.DefaultCriticalityFactor),
			Workers:             getEnvInt("SIM_WORKERS", 0),
			ClampNormal:         getEnvBool("SIM_CLAMP_NORMAL", true),
			Seed:                int64(getEnvInt("SIM_SEED", 0)),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	// Ensure directories exist
	for _, dir := range []string{cfg.LogDir, cfg.ArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create data directory")
		}
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks the configuration against its struct constraints.
func Validate(cfg *AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer configuration value")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric configuration value")
	}
	return fallback
}
