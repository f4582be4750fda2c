package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a stored file does not exist
var ErrNotFound = errors.New("file not found")

// StorageClient stores report files grouped into one folder per report
type StorageClient interface {
	// Close closes the storage client
	Close() error

	// StoreFile stores a file in the report folder of timestamp
	StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error

	// GetFile retrieves a file by its path relative to the storage root
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// ListReports returns the index.html paths of stored reports, newest first
	ListReports(ctx context.Context, limit int) ([]string, error)
}
