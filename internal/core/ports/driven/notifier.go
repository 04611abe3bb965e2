package driven

import (
	"context"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// Notifier reports the end of a run to the user.
type Notifier interface {
	// ReportSuccess sends the completion notice listing the archived files.
	ReportSuccess(ctx context.Context, results []domain.UploadResult) error

	// ReportFailure sends the error notice.
	ReportFailure(ctx context.Context, message string) error
}
