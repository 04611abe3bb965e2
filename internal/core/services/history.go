package services

import (
	"context"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// defaultHistoryLimit is used when a non-positive limit is requested.
const defaultHistoryLimit = 10

// HistoryService lists previous runs from the run journal.
type HistoryService struct {
	journal driven.RunJournal
}

// NewHistoryService creates a history service. The journal may be nil.
func NewHistoryService(journal driven.RunJournal) *HistoryService {
	return &HistoryService{journal: journal}
}

// Recent returns up to limit runs, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if s.journal == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.journal.Recent(ctx, limit)
}
