// Package drive adapts the Google Drive API to the ObjectStore port:
// dated folders and uploaded chart PDFs.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/arcline-labs/chartpress/internal/connectors/google"
	"github.com/arcline-labs/chartpress/internal/core/ports/driven"
)

// MimeTypeFolder is the Drive folder MIME type.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Store is a Drive-backed object store.
type Store struct {
	svc     *drive.Service
	limiter *google.RateLimiter
}

// NewStore creates an ObjectStore over the Drive API.
func NewStore(svc *drive.Service) *Store {
	return &Store{
		svc:     svc,
		limiter: google.NewRateLimiter(google.ServiceDrive),
	}
}

// FindFolder looks for a non-trashed folder named exactly name
// directly under parentID. Returns "" when no such folder exists.
func (s *Store) FindFolder(ctx context.Context, parentID, name string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	query := fmt.Sprintf(
		"name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), MimeTypeFolder, escapeQuery(parentID),
	)
	list, err := s.svc.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		wrapped := s.wrap(err)
		if google.IsNotFound(wrapped) {
			return "", fmt.Errorf("parent folder %s not found, check the folder id and its sharing: %w", parentID, wrapped)
		}
		return "", fmt.Errorf("list folders under %s: %w", parentID, wrapped)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// CreateFolder creates a folder under parentID and returns its id.
func (s *Store) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	folder, err := s.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: MimeTypeFolder,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q under %s: %w", name, parentID, s.wrap(err))
	}
	return folder.Id, nil
}

// Upload stores the stream as a named file under parentID.
func (s *Store) Upload(ctx context.Context, parentID, name, mimeType string, r io.Reader) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	file, err := s.svc.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{parentID},
	}).Media(r, googleapi.ContentType(mimeType)).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", name, s.wrap(err))
	}
	return file.Id, nil
}

// Delete removes a file or folder by id.
func (s *Store) Delete(ctx context.Context, fileID string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := s.svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete %s: %w", fileID, s.wrap(err))
	}
	return nil
}

func (s *Store) wrap(err error) error {
	wrapped := google.WrapError(err)
	if google.IsRateLimited(wrapped) {
		s.limiter.RecordRateLimitError(0)
	}
	return wrapped
}

// escapeQuery escapes the quotes Drive query strings are delimited by.
func escapeQuery(v string) string {
	return strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `'`, `\'`)
}
