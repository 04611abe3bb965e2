package driven

import (
	"context"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// PayslipProvider retrieves payslips from a provider portal.
// Implementations log in on demand; callers never manage the session.
type PayslipProvider interface {
	// Name returns the integration name (e.g. "epaywindow").
	Name() string

	// List returns the provider's most recent payslips, newest first.
	List(ctx context.Context) ([]domain.ProviderDocument, error)

	// Download writes the payslip for item to the download directory and
	// returns the local path. The body is written byte-for-byte.
	Download(ctx context.Context, item domain.WorkItem) (string, error)
}
