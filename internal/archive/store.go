package archive

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("simulation record not found")

// Store provides thread-safe, append-only storage of simulation records,
// persisted as one JSONL file per project.
type Store struct {
	dir    string
	mu     sync.RWMutex
	loaded map[string]bool
	logs   map[string][]Record // Partitioned by project ID, oldest first
}

// NewStore creates a store rooted at dir. Files are read lazily per project.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		loaded: make(map[string]bool),
		logs:   make(map[string][]Record),
	}
}

// Append persists rec and returns it with ID and RunAt filled in when they were empty.
func (s *Store) Append(rec Record) (Record, error) {
	if err := checkProjectID(rec.ProjectID); err != nil {
		return Record{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RunAt.IsZero() {
		rec.RunAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(rec.ProjectID); err != nil {
		return Record{}, err
	}
	for _, existing := range s.logs[rec.ProjectID] {
		if existing.ID == rec.ID {
			return Record{}, fmt.Errorf("record %s already exists", rec.ID)
		}
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode record: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return Record{}, fmt.Errorf("failed to create archive directory: %w", err)
	}

	file, err := os.OpenFile(s.path(rec.ProjectID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return Record{}, fmt.Errorf("failed to open archive: %w", err)
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		file.Close()
		return Record{}, fmt.Errorf("failed to write record: %w", err)
	}
	if err := file.Close(); err != nil {
		return Record{}, fmt.Errorf("failed to close archive: %w", err)
	}

	s.logs[rec.ProjectID] = append(s.logs[rec.ProjectID], rec)
	log.Info().Str("project", rec.ProjectID).Str("id", rec.ID).Msg("Simulation record archived")
	return rec, nil
}

// Get returns the record with the given id for a project.
func (s *Store) Get(projectID, id string) (Record, error) {
	records, err := s.records(projectID)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s/%s", ErrNotFound, projectID, id)
}

// List returns summaries of a project's records, newest first.
func (s *Store) List(projectID string) ([]Summary, error) {
	records, err := s.records(projectID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(records))
	for _, r := range slices.Backward(records) {
		out = append(out, r.Summarize())
	}
	return out, nil
}

// Latest returns the most recent record of a project.
func (s *Store) Latest(projectID string) (Record, error) {
	records, err := s.records(projectID)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf("%w: no runs for %s", ErrNotFound, projectID)
	}
	return records[len(records)-1], nil
}

func (s *Store) records(projectID string) ([]Record, error) {
	if err := checkProjectID(projectID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if s.loaded[projectID] {
		defer s.mu.RUnlock()
		return slices.Clone(s.logs[projectID]), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(projectID); err != nil {
		return nil, err
	}
	return slices.Clone(s.logs[projectID]), nil
}

// ensureLoaded reads the project's JSONL file once. Callers must hold the write lock.
func (s *Store) ensureLoaded(projectID string) error {
	if s.loaded[projectID] {
		return nil
	}

	file, err := os.Open(s.path(projectID))
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded[projectID] = true
			return nil // No runs yet, not an error
		}
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			log.Warn().Err(err).Str("project", projectID).Msg("Skipping invalid JSON line in archive")
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading archive: %w", err)
	}

	log.Debug().Str("project", projectID).Int("count", len(records)).Msg("Loaded simulation records")
	s.logs[projectID] = records
	s.loaded[projectID] = true
	return nil
}

func (s *Store) path(projectID string) string {
	return filepath.Join(s.dir, projectID+".jsonl")
}

func checkProjectID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid project id %q", id)
	}
	return nil
}
