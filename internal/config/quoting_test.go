package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func TestGodotenvQuoting(t *testing.T) {
	content := `PROJECTS_PATH='/srv/risk data/"site a"'`
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(envFile)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `/srv/risk data/"site a"`
	if env["PROJECTS_PATH"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["PROJECTS_PATH"])
	}
}

func TestLoad_WorkingDirectoryEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "DATA_PATH=" + dir + "\nSIM_CRITICALITY_FACTOR=1.35\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	// t.Setenv restores the original values; unsetting lets godotenv populate them.
	for _, key := range []string{"DATA_PATH", "SIM_CRITICALITY_FACTOR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DataPath != dir {
		t.Errorf("Expected data path %s, got %s", dir, cfg.DataPath)
	}
	if cfg.Simulation.CriticalityFactor != 1.35 {
		t.Errorf("Expected criticality factor 1.35 from .env, got %f", cfg.Simulation.CriticalityFactor)
	}
}
