// Package drive implements the payslip archive over the Google Drive API.
package drive

import (
	"context"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// MimeTypeFolder is the Drive MIME type of folders.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// MimeTypePDF is the MIME type payslips are stored with.
const MimeTypePDF = "application/pdf"

// API is the subset of the Drive API the archive relies on.
type API interface {
	ListFiles(ctx context.Context, query, orderBy string, pageSize int64) ([]*drive.File, error)
	CreateFile(ctx context.Context, file *drive.File, media io.Reader) (*drive.File, error)
}

// serviceAPI adapts *drive.Service to API.
type serviceAPI struct {
	svc *drive.Service
}

// Verify interface compliance.
var _ API = (*serviceAPI)(nil)

func (a *serviceAPI) ListFiles(ctx context.Context, query, orderBy string, pageSize int64) ([]*drive.File, error) {
	call := a.svc.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id,name,webViewLink)").
		Context(ctx)
	if orderBy != "" {
		call = call.OrderBy(orderBy)
	}
	if pageSize > 0 {
		call = call.PageSize(pageSize)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (a *serviceAPI) CreateFile(ctx context.Context, file *drive.File, media io.Reader) (*drive.File, error) {
	return a.svc.Files.Create(file).
		Media(media, googleapi.ContentType(file.MimeType)).
		Fields("id,name,webViewLink").
		Context(ctx).
		Do()
}
