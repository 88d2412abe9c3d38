package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
)

// Manager owns one creator's local working directory. Files are written
// through a temporary file and renamed into place so a partial download
// never appears under its final name.
type Manager struct {
	outputDir string
	saved     atomic.Int64
}

// NewManager creates the directory if needed and returns its manager
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// Save creates name in the output directory with the bytes written by
// fill and returns the final path
func (m *Manager) Save(name string, fill func(w io.Writer) error) (string, error) {
	final := filepath.Join(m.outputDir, name)

	tmp, err := os.CreateTemp(m.outputDir, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	fillErr := fill(tmp)
	closeErr := tmp.Close()
	if fillErr != nil {
		os.Remove(tmpName)
		return "", fillErr
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.saved.Add(1)
	return final, nil
}

// Remove deletes a file written by Save. Missing files are not an error.
func (m *Manager) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// UniqueName returns a collision-free file name with the given extension
func UniqueName(ext string) string {
	return uuid.NewString() + ext
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// SavedCount returns the number of files saved through this manager
func (m *Manager) SavedCount() int {
	return int(m.saved.Load())
}
