package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/slides/v1"
)

// Scopes covers everything the pipeline touches: read-only access to
// the source spreadsheet, write access to scratch presentations, and
// Drive access for folders, uploads and PDF export.
var Scopes = []string{
	sheets.SpreadsheetsReadonlyScope,
	slides.PresentationsScope,
	drive.DriveScope,
}

// TokenSourceFromFile builds an oauth2.TokenSource from a
// service-account JSON key file.
func TokenSourceFromFile(ctx context.Context, path string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return creds.TokenSource, nil
}
