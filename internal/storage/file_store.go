// Package storage provides local-filesystem persistence rooted at the
// configured base directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileStore defines the interface for persisted-state file operations
type FileStore interface {
	// Read returns the content of the file at the given path
	Read(fullPath string) ([]byte, error)

	// Write replaces the file at the given path, creating parent
	// directories if needed
	Write(fullPath string, content []byte) error

	// Exists reports whether a file is present at the given path
	Exists(fullPath string) bool

	// ValidatePath checks path security (no traversal, within base)
	ValidatePath(fullPath string) error
}

// LocalFileStore implements FileStore for the local filesystem
type LocalFileStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStore creates a LocalFileStore rooted at baseDir, creating
// the directory if it does not exist yet.
func NewLocalFileStore(baseDir string, logger *zap.Logger) (*LocalFileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalFileStore{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// BaseDir returns the storage root
func (s *LocalFileStore) BaseDir() string {
	return s.baseDir
}

// Read returns the content of the file at the given path
func (s *LocalFileStore) Read(fullPath string) ([]byte, error) {
	if err := s.ValidatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Write replaces the file at the given path
func (s *LocalFileStore) Write(fullPath string, content []byte) error {
	if err := s.ValidatePath(fullPath); err != nil {
		return err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return nil
}

// Exists reports whether a file is present at the given path
func (s *LocalFileStore) Exists(fullPath string) bool {
	if err := s.ValidatePath(fullPath); err != nil {
		return false
	}
	_, err := os.Stat(fullPath)
	return err == nil
}

// ValidatePath checks that the path is safe and within baseDir
func (s *LocalFileStore) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	// Ensure path starts with base + separator or equals base, so a sibling
	// directory sharing the prefix does not pass.
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}
