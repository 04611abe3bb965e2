package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

func TestHistoryService_NilJournal(t *testing.T) {
	records, err := NewHistoryService(nil).Recent(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryService_Recent(t *testing.T) {
	journal := &mockJournal{}
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, journal.Record(context.Background(), &domain.RunReport{RunID: id}))
	}

	records, err := NewHistoryService(journal).Recent(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].RunID)
	assert.Equal(t, "b", records[1].RunID)
}

func TestHistoryService_DefaultLimit(t *testing.T) {
	journal := &mockJournal{}
	for i := 0; i < defaultHistoryLimit+5; i++ {
		require.NoError(t, journal.Record(context.Background(), &domain.RunReport{RunID: "r"}))
	}

	records, err := NewHistoryService(journal).Recent(context.Background(), 0)

	require.NoError(t, err)
	assert.Len(t, records, defaultHistoryLimit)
}
