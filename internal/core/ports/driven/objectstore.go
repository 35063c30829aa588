package driven

import (
	"context"
	"io"
)

// ObjectStore is the destination archive: folders and uploaded files.
type ObjectStore interface {
	// FindFolder looks for a non-trashed folder named exactly name
	// directly under parentID. Returns "" (and no error) when the
	// folder does not exist.
	FindFolder(ctx context.Context, parentID, name string) (string, error)

	// CreateFolder creates a folder under parentID and returns its id.
	CreateFolder(ctx context.Context, parentID, name string) (string, error)

	// Upload stores the stream as a named file under parentID and
	// returns the new file's id.
	Upload(ctx context.Context, parentID, name, mimeType string, r io.Reader) (string, error)

	// Delete removes a file or folder by id.
	Delete(ctx context.Context, fileID string) error
}
