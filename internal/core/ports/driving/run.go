package driving

import (
	"context"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// RunOrchestrator executes one end-to-end payslip run.
type RunOrchestrator interface {
	// Run executes the pipeline. It never returns an error: failures are
	// reported through the notifier and described by the returned report.
	Run(ctx context.Context, opts domain.RunOptions) *domain.RunReport
}

// TriggerGate decides whether a run is required and marks the trigger
// email once the run has succeeded.
type TriggerGate interface {
	// IsProcessingRequired searches for the trigger email.
	IsProcessingRequired(ctx context.Context) (bool, error)

	// MarkProcessed labels and/or marks read the trigger email(s).
	MarkProcessed(ctx context.Context) error

	// State returns the gate's view after the last check.
	State() domain.TriggerState
}

// HistoryService lists previous runs.
type HistoryService interface {
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
