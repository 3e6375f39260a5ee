package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/internhub/internal/pkg/logger"
)

// LocalStorage keeps objects as files below a base directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory when needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// resolve maps a key to a path inside basePath, rejecting traversal
func (ls *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimSpace(key))
	if clean == "/" {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(clean)), nil
}

// Put writes body to the file for key
func (ls *LocalStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	dstPath, err := ls.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return fmt.Errorf("failed to create subdirectory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, body); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy object content")
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to save object content: %w", err)
	}

	logger.Debug().Str("key", key).Msg("Object stored")
	return nil
}

// Get opens the file for key
func (ls *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := ls.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

// Delete removes the file for key. Missing files are not an error.
func (ls *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := ls.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error().Err(err).Str("path", p).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
