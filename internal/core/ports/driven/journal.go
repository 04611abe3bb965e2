package driven

import (
	"context"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// RunJournal persists the history of runs.
type RunJournal interface {
	// Record stores the outcome of a finished run.
	Record(ctx context.Context, report *domain.RunReport) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Close releases any resources held by the journal.
	Close() error
}
