package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrSourceNotFound = errors.New("resume source not found")

// ResumeSource lists resume filenames and reads their bytes by name.
type ResumeSource interface {
	// List returns filenames in a stable order.
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
	// Location describes the source for log and error messages.
	Location() string
}

type dirSource struct {
	dir string
}

// NewDirSource reads resumes from the regular files of dir.
func NewDirSource(dir string) ResumeSource {
	return &dirSource{dir: dir}
}

func (s *dirSource) Location() string {
	return s.dir
}

func (s *dirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.dir)
		}
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (s *dirSource) Read(ctx context.Context, name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid resume name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
