package project

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mcs-risk/internal/simulation"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var extensions = []string{".yaml", ".yml", ".json"}

var validate = validator.New()

// FileRepository reads one project per file from a directory.
// JSON files are parsed by the YAML decoder, which accepts them as a subset.
type FileRepository struct {
	dir string
}

// NewFileRepository returns a repository rooted at dir.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Get loads and validates the project with the given id.
func (r *FileRepository) Get(ctx context.Context, id string) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return Project{}, fmt.Errorf("%w: invalid project id %q", ErrNotFound, id)
	}

	for _, ext := range extensions {
		path := filepath.Join(r.dir, id+ext)
		p, err := loadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Project{}, err
		}
		if p.ID != id {
			return Project{}, fmt.Errorf("%w: project file %s declares id %q", simulation.ErrInvalidInput, path, p.ID)
		}
		return p, nil
	}
	return Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns summaries of every readable project in the directory, sorted by id.
// Files that fail to parse are skipped with a warning.
func (r *FileRepository) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !slices.Contains(extensions, filepath.Ext(e.Name())) {
			continue
		}
		path := filepath.Join(r.dir, e.Name())
		p, err := loadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable project file")
			continue
		}
		summaries = append(summaries, p.Summarize())
	}

	slices.SortFunc(summaries, func(a, b Summary) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return summaries, nil
}

func loadFile(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, err
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Project{}, fmt.Errorf("%w: failed to parse %s: %w", simulation.ErrInvalidInput, path, err)
	}
	if err := Validate(p); err != nil {
		return Project{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks the structural constraints of a project record.
func Validate(p Project) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: invalid project: %w", simulation.ErrInvalidInput, err)
	}
	return nil
}
