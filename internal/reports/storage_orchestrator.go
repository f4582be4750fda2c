package reports

import (
	"context"
	"fmt"
	"sort"

	"energychart/internal/logger"
	"energychart/internal/storage"
)

// StorageOrchestrator writes generated report files through a storage client
type StorageOrchestrator struct {
	storage storage.StorageClient
	log     *logger.Logger
}

// NewStorageOrchestrator creates a new storage orchestrator
func NewStorageOrchestrator(client storage.StorageClient) *StorageOrchestrator {
	return &StorageOrchestrator{
		storage: client,
		log:     logger.Component("reports"),
	}
}

// Store writes every file of the report and returns the path of its index page.
// The index page is written last so that listed reports are complete.
func (so *StorageOrchestrator) Store(ctx context.Context, files *GeneratedFiles) (string, error) {
	names := make([]string, 0, len(files.Files))
	for name := range files.Files {
		if name != IndexFile {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := files.Files[IndexFile]; ok {
		names = append(names, IndexFile)
	}

	for _, name := range names {
		if err := so.storage.StoreFile(ctx, files.Files[name], name, files.Timestamp); err != nil {
			return "", fmt.Errorf("failed to store %s: %w", name, err)
		}
	}

	so.log.Info("Report stored", map[string]interface{}{
		"folder": files.FolderPath,
		"files":  len(names),
	})
	return files.FolderPath + "/" + IndexFile, nil
}
