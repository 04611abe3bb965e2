package payslip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/payslip-saver/internal/connectors/scraper"
	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// SaveDocument streams the payslip at path into {dir}/{date}-{companyTag}.pdf
// and returns the local file path. A partially written file is removed.
// Every failure wraps domain.ErrDownload.
func SaveDocument(ctx context.Context, sess *scraper.Session, path, dir string, item domain.WorkItem) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("%w: create download directory: %w", domain.ErrDownload, err)
	}

	local := filepath.Join(dir, item.FileName())
	f, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrDownload, err)
	}

	n, err := sess.Download(ctx, path, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(local)
		return "", fmt.Errorf("%w: payslip %s: %w", domain.ErrDownload, item.Document.ID, err)
	}

	logger.Debug("wrote %d bytes to %s", n, local)
	return local, nil
}

// CatalogError wraps a listing failure in domain.ErrCatalogFetch.
func CatalogError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
}
