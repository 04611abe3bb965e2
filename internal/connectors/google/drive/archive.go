package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/payslip-saver/internal/connectors/google"
	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// Config holds the archive settings.
type Config struct {
	// FolderName is the name of the Drive folder payslips live in.
	FolderName string
	// PageSize bounds how many archived files are listed.
	PageSize int64
	// ListTimeout bounds each folder lookup and listing call.
	ListTimeout time.Duration
	// UploadTimeout bounds a single upload.
	UploadTimeout time.Duration
	// AppName is recorded in the description of uploaded files.
	AppName string
}

// Timeouts applied when Config leaves them zero.
const (
	DefaultListTimeout   = 30 * time.Second
	DefaultUploadTimeout = 60 * time.Second
)

// Archive implements driven.Archive over a single Drive folder.
type Archive struct {
	api     API
	limiter *google.RateLimiter
	cfg     Config
	cache   *FolderCache
}

// Verify interface compliance.
var _ driven.Archive = (*Archive)(nil)

// New creates an archive backed by the Drive service.
func New(svc *drive.Service, cfg Config) *Archive {
	return NewWithAPI(&serviceAPI{svc: svc}, google.NewRateLimiter(google.ServiceDrive), cfg)
}

// NewWithAPI creates an archive over an arbitrary API implementation.
func NewWithAPI(api API, limiter *google.RateLimiter, cfg Config) *Archive {
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = DefaultListTimeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}
	return &Archive{
		api:     api,
		limiter: limiter,
		cfg:     cfg,
		cache:   NewFolderCache(),
	}
}

// Cache exposes the folder cache so callers can invalidate it.
func (a *Archive) Cache() *FolderCache {
	return a.cache
}

// List returns the payslips in the archive folder, newest names first.
// Names that do not follow YYYY-MM-DD-Company.pdf are skipped.
func (a *Archive) List(ctx context.Context) ([]domain.ArchivedDocument, error) {
	folder, err := a.ResolveContainer(ctx, a.cfg.FolderName)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folder.ID))
	logger.Debug("drive: listing archived payslips with %q", query)

	listCtx, cancel := context.WithTimeout(ctx, a.cfg.ListTimeout)
	defer cancel()

	var files []*drive.File
	err = a.limiter.Do(listCtx, func() error {
		var err error
		files, err = a.api.ListFiles(listCtx, query, "name desc", a.cfg.PageSize)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list folder %q: %w", a.cfg.FolderName, err)
	}

	docs := make([]domain.ArchivedDocument, 0, len(files))
	for _, f := range files {
		doc, ok := domain.ParseArchivedName(f.Name)
		if !ok {
			logger.Debug("drive: skipping %q", f.Name)
			continue
		}
		docs = append(docs, doc)
	}
	logger.Info("drive: %d archived payslip(s) in %q", len(docs), a.cfg.FolderName)
	return docs, nil
}

// Upload stores the local PDF in the archive folder.
func (a *Archive) Upload(ctx context.Context, localPath string) (domain.UploadResult, error) {
	name := filepath.Base(localPath)
	logger.Info("drive: uploading %s", localPath)

	folder, err := a.ResolveContainer(ctx, a.cfg.FolderName)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("%w: %w", domain.ErrUpload, err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("%w: %w", domain.ErrUpload, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.UploadTimeout)
	defer cancel()

	var created *drive.File
	err = a.limiter.Do(ctx, func() error {
		var err error
		created, err = a.api.CreateFile(ctx, &drive.File{
			Name:        name,
			MimeType:    MimeTypePDF,
			Description: "Payslip uploaded by " + a.cfg.AppName,
			Parents:     []string{folder.ID},
		}, f)
		return err
	})
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("%w: %s: %w", domain.ErrUpload, name, err)
	}

	logger.Info("drive: payslip uploaded to %s", created.WebViewLink)
	return domain.UploadResult{FileURL: created.WebViewLink, FolderURL: folder.URL}, nil
}

// ResolveContainer finds the folder called name. Exactly one non-trashed
// folder must match. Successful lookups are cached.
func (a *Archive) ResolveContainer(ctx context.Context, name string) (domain.FolderInfo, error) {
	if info, ok := a.cache.Get(name); ok {
		return info, nil
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), MimeTypeFolder)
	logger.Debug("drive: searching for %q", query)

	ctx, cancel := context.WithTimeout(ctx, a.cfg.ListTimeout)
	defer cancel()

	var files []*drive.File
	err := a.limiter.Do(ctx, func() error {
		var err error
		files, err = a.api.ListFiles(ctx, query, "", 0)
		return err
	})
	if err != nil {
		return domain.FolderInfo{}, fmt.Errorf("find folder %q: %w", name, err)
	}
	if len(files) != 1 {
		logger.Error("drive: folder %q matched %d folder(s)", name, len(files))
		return domain.FolderInfo{}, &domain.ContainerNotFoundError{Name: name, Matches: len(files)}
	}

	info := domain.FolderInfo{ID: files[0].Id, URL: files[0].WebViewLink}
	logger.Info("drive: got folder %s (%s)", name, info.ID)
	a.cache.Put(name, info)
	return info, nil
}

// escapeQuery escapes a literal for use inside a single-quoted Drive query string.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
