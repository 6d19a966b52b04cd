package sheets

import (
	"context"

	"golang.org/x/oauth2"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// NewSheetsService creates a Sheets API service using the provided TokenSource.
func NewSheetsService(ctx context.Context, ts oauth2.TokenSource) (*sheetsv4.Service, error) {
	return sheetsv4.NewService(ctx, option.WithTokenSource(ts))
}

// NewDriveService creates a Drive API service using the provided TokenSource.
// Drive is only used to resolve a spreadsheet by name; the drive.file
// scope limits visibility to files this application created.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource) (*drivev3.Service, error) {
	return drivev3.NewService(ctx, option.WithTokenSource(ts))
}
