package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGS_FOLDER", dir)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Init(true)
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level when verbose, got %s", zerolog.GlobalLevel())
	}

	log.Info().Str("project", "tower-a").Msg("logging smoke test")

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("Expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "tower-a") {
		t.Errorf("Expected structured field in log file, got %s", data)
	}
}

func TestRotatingWriter_UnwritableDir(t *testing.T) {
	// A regular file cannot host a log directory.
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := rotatingWriter(filepath.Join(blocker, "logs")); err == nil {
		t.Errorf("Expected an error for a log directory below a regular file")
	}
}
