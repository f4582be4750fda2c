package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"energychart/internal/logger"
)

// LocalStorageClient handles local file system storage operations
type LocalStorageClient struct {
	baseDir string
	log     *logger.Logger
}

// NewLocalStorageClient creates a new local storage client rooted at baseDir
func NewLocalStorageClient(baseDir string) (*LocalStorageClient, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}

	return &LocalStorageClient{
		baseDir: baseDir,
		log:     logger.Component("storage"),
	}, nil
}

// BaseDir returns the directory reports are written to
func (l *LocalStorageClient) BaseDir() string {
	return l.baseDir
}

// Close is a no-op for local storage
func (l *LocalStorageClient) Close() error {
	return nil
}

// StoreFile stores a file locally in the report folder of timestamp
func (l *LocalStorageClient) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error {
	filePath := filepath.Join(l.baseDir, filepath.FromSlash(GenerateReportFolderPath(timestamp)), filename)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(filePath, fileData, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	l.log.Debug("Stored report file", map[string]interface{}{
		"path": filePath,
		"size": logger.HumanBytes(len(fileData)),
	})
	return nil
}

// GetFile retrieves a file by its path relative to the base directory
func (l *LocalStorageClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	cleaned, err := CleanPath(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(l.baseDir, filepath.FromSlash(cleaned)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, cleaned)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", cleaned, err)
	}
	return data, nil
}

// ListReports lists stored reports, newest first
func (l *LocalStorageClient) ListReports(ctx context.Context, limit int) ([]string, error) {
	var reportPaths []string

	err := filepath.WalkDir(l.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() && d.Name() == ReportIndexFile {
			relPath, relErr := filepath.Rel(l.baseDir, path)
			if relErr == nil {
				reportPaths = append(reportPaths, filepath.ToSlash(relPath))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk reports directory: %w", err)
	}

	return newestFirst(reportPaths, limit), nil
}
