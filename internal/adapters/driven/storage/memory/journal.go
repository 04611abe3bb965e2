package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
)

// Ensure RunJournal implements the interface.
var _ driven.RunJournal = (*RunJournal)(nil)

// RunJournal is an in-memory implementation of driven.RunJournal.
type RunJournal struct {
	mu      sync.RWMutex
	records []domain.RunRecord
}

// NewRunJournal creates a new in-memory run journal.
func NewRunJournal() *RunJournal {
	return &RunJournal{}
}

// Record stores the outcome of a finished run. Recording the same run
// twice replaces the earlier entry.
func (j *RunJournal) Record(_ context.Context, report *domain.RunReport) error {
	rec := report.Record()

	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.records {
		if j.records[i].RunID == rec.RunID {
			j.records[i] = rec
			return nil
		}
	}
	j.records = append(j.records, rec)
	return nil
}

// Recent returns up to limit records, newest first.
func (j *RunJournal) Recent(_ context.Context, limit int) ([]domain.RunRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	result := make([]domain.RunRecord, 0, min(limit, len(j.records)))
	for i := len(j.records) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, j.records[i])
	}
	return result, nil
}

// Close is a no-op for the memory journal.
func (j *RunJournal) Close() error {
	return nil
}
