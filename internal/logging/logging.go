package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "mcs-risk.log"

// Init initializes the global logger with dual sinks: os.Stderr and a rotating file.
// When the log directory is unusable the logger degrades to stderr only.
func Init(verbose bool) {
	// Init runs before config.Load, so LOGS_FOLDER may only exist in the binary's .env.
	exePath, exeErr := os.Executable()
	if exeErr == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exePath), ".env"))
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	console := consoleWriter(os.Stderr)

	logDir := os.Getenv("LOGS_FOLDER")
	if logDir == "" {
		if exeErr == nil {
			logDir = filepath.Join(filepath.Dir(exePath), "logs")
		} else {
			logDir = "logs"
		}
	}

	fileWriter, err := rotatingWriter(logDir)
	if err != nil {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		log.Warn().Err(err).Str("dir", logDir).Msg("File logging disabled")
		return
	}

	multi := zerolog.MultiLevelWriter(console, fileWriter)
	log.Logger = zerolog.New(multi).
		With().
		Timestamp().
		Logger()
}

// consoleWriter renders human-readable output, coloured only on a real terminal.
func consoleWriter(f *os.File) io.Writer {
	isTerminal := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return zerolog.ConsoleWriter{
		Out:        f,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}
}

func rotatingWriter(logDir string) (io.Writer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	testFile := filepath.Join(logDir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return nil, fmt.Errorf("log directory is not writable: %w", err)
	}
	_ = os.Remove(testFile)

	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFileName),
		MaxSize:    16, // megabytes
		MaxBackups: 32,
		MaxAge:     365, // days
		Compress:   true,
	}, nil
}
