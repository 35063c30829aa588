package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/arcline-labs/chartpress/internal/core/domain"
	"github.com/arcline-labs/chartpress/internal/core/ports/driven"
	"github.com/arcline-labs/chartpress/internal/logger"
)

// retryLabelFolders labels the retry diagnostics for folder resolution.
const retryLabelFolders = "resolve-dated-folder"

// FolderResolver idempotently resolves the per-day output folder under
// a store's destination root. Results are memoized per
// (parentID, dateKey) for the run's lifetime: one successful remote
// resolution per key, never re-queried afterwards.
type FolderResolver struct {
	objects driven.ObjectStore
	retry   domain.RetryConfig

	mu    sync.Mutex
	cache map[string]string
}

// NewFolderResolver creates a resolver over the given object store.
func NewFolderResolver(objects driven.ObjectStore, retry domain.RetryConfig) *FolderResolver {
	return &FolderResolver{
		objects: objects,
		retry:   retry,
		cache:   make(map[string]string),
	}
}

// Resolve returns the id of the folder named dateKey directly under
// parentID, creating it if absent. Safe to call repeatedly within a
// run; under single-writer usage no duplicate folders are created.
func (r *FolderResolver) Resolve(ctx context.Context, parentID, dateKey string) (string, error) {
	key := parentID + "/" + dateKey

	r.mu.Lock()
	if id, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	id, err := Retry(ctx, retryLabelFolders, r.retry, func(ctx context.Context) (string, error) {
		found, err := r.objects.FindFolder(ctx, parentID, dateKey)
		if err != nil {
			return "", fmt.Errorf("find folder %q: %w", dateKey, err)
		}
		if found != "" {
			return found, nil
		}
		created, err := r.objects.CreateFolder(ctx, parentID, dateKey)
		if err != nil {
			return "", fmt.Errorf("create folder %q: %w", dateKey, err)
		}
		logger.Info("created dated folder %s under %s", dateKey, parentID)
		return created, nil
	})
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[key] = id
	r.mu.Unlock()
	return id, nil
}
