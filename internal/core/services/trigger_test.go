package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

const (
	testCriteria = "newer_than:7d from:Payslip4u subject:'Document Uploaded'"
	testLabel    = "payslip-saver-Processed"
)

func testTriggerSettings() domain.TriggerSettings {
	return domain.TriggerSettings{
		SearchCriteria:      testCriteria,
		ProcessedLabel:      testLabel,
		ApplyProcessedLabel: true,
		MarkAsRead:          true,
	}
}

func TestTriggerGate_InitialState(t *testing.T) {
	gate := NewTriggerGate(newMockMailbox(), testTriggerSettings())

	assert.Equal(t, domain.TriggerNotChecked, gate.State())
}

func TestTriggerGate_NotReceived(t *testing.T) {
	mailbox := newMockMailbox()
	gate := NewTriggerGate(mailbox, testTriggerSettings())

	required, err := gate.IsProcessingRequired(context.Background())

	require.NoError(t, err)
	assert.False(t, required)
	assert.Equal(t, domain.TriggerNotReceived, gate.State())
	assert.Equal(t, []string{testCriteria}, mailbox.searches)
}

func TestTriggerGate_ReceivedUnprocessed(t *testing.T) {
	mailbox := newMockMailbox(domain.MessageRef{ID: "m1"}, domain.MessageRef{ID: "m2"})
	mailbox.label("m1", testLabel)
	gate := NewTriggerGate(mailbox, testTriggerSettings())

	required, err := gate.IsProcessingRequired(context.Background())

	require.NoError(t, err)
	assert.True(t, required)
	assert.Equal(t, domain.TriggerReceivedUnprocessed, gate.State())
}

func TestTriggerGate_RepeatedCheckIsStable(t *testing.T) {
	tests := []struct {
		name      string
		messages  []domain.MessageRef
		labelled  []string
		wantOK    bool
		wantState domain.TriggerState
	}{
		{
			name:      "not received",
			wantState: domain.TriggerNotReceived,
		},
		{
			name:      "received and processed",
			messages:  []domain.MessageRef{{ID: "m1"}},
			labelled:  []string{"m1"},
			wantState: domain.TriggerReceivedProcessed,
		},
		{
			name:      "received and unprocessed",
			messages:  []domain.MessageRef{{ID: "m1"}, {ID: "m2"}},
			labelled:  []string{"m1"},
			wantOK:    true,
			wantState: domain.TriggerReceivedUnprocessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailbox := newMockMailbox(tt.messages...)
			for _, id := range tt.labelled {
				mailbox.label(id, testLabel)
			}
			gate := NewTriggerGate(mailbox, testTriggerSettings())

			first, err := gate.IsProcessingRequired(context.Background())
			require.NoError(t, err)
			firstState := gate.State()

			second, err := gate.IsProcessingRequired(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantOK, first)
			assert.Equal(t, first, second)
			assert.Equal(t, tt.wantState, firstState)
			assert.Equal(t, firstState, gate.State())
			assert.Empty(t, mailbox.applied)
			assert.Empty(t, mailbox.read)
		})
	}
}

func TestTriggerGate_ReceivedProcessed(t *testing.T) {
	mailbox := newMockMailbox(domain.MessageRef{ID: "m1"}, domain.MessageRef{ID: "m2"})
	mailbox.label("m1", testLabel)
	mailbox.label("m2", testLabel)
	gate := NewTriggerGate(mailbox, testTriggerSettings())

	required, err := gate.IsProcessingRequired(context.Background())

	require.NoError(t, err)
	assert.False(t, required)
	assert.Equal(t, domain.TriggerReceivedProcessed, gate.State())
}

func TestTriggerGate_SearchError(t *testing.T) {
	mailbox := newMockMailbox()
	mailbox.searchErr = errors.New("quota exceeded")
	gate := NewTriggerGate(mailbox, testTriggerSettings())

	required, err := gate.IsProcessingRequired(context.Background())

	require.Error(t, err)
	assert.False(t, required)
	assert.True(t, errors.Is(err, domain.ErrTriggerCheck))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestTriggerGate_HasLabelError(t *testing.T) {
	mailbox := newMockMailbox(domain.MessageRef{ID: "m1"})
	mailbox.hasLabelErr = errors.New("labels unavailable")
	gate := NewTriggerGate(mailbox, testTriggerSettings())

	_, err := gate.IsProcessingRequired(context.Background())

	assert.True(t, errors.Is(err, domain.ErrTriggerCheck))
}

func TestTriggerGate_RecheckFlushesCache(t *testing.T) {
	mailbox := newMockMailbox(domain.MessageRef{ID: "m1"})
	gate := NewTriggerGate(mailbox, testTriggerSettings())

	required, err := gate.IsProcessingRequired(context.Background())
	require.NoError(t, err)
	require.True(t, required)

	mailbox.label("m1", testLabel)

	required, err = gate.IsProcessingRequired(context.Background())
	require.NoError(t, err)
	assert.False(t, required)
	assert.Len(t, mailbox.searches, 2)
}

func TestTriggerGate_MarkProcessed(t *testing.T) {
	mailbox := newMockMailbox(domain.MessageRef{ID: "m1"}, domain.MessageRef{ID: "m2"})
	gate := NewTriggerGate(mailbox, testTriggerSettings())

	_, err := gate.IsProcessingRequired(context.Background())
	require.NoError(t, err)

	require.NoError(t, gate.MarkProcessed(context.Background()))

	assert.Equal(t, []string{"m1", "m2"}, mailbox.applied)
	assert.Equal(t, []string{"m1", "m2"}, mailbox.read)
	assert.Equal(t, domain.TriggerReceivedProcessed, gate.State())

	// A later check sees the label and does not require processing.
	required, err := gate.IsProcessingRequired(context.Background())
	require.NoError(t, err)
	assert.False(t, required)
}

func TestTriggerGate_MarkProcessed_Idempotent(t *testing.T) {
	mailbox := newMockMailbox(domain.MessageRef{ID: "m1"})
	gate := NewTriggerGate(mailbox, testTriggerSettings())
	_, err := gate.IsProcessingRequired(context.Background())
	require.NoError(t, err)

	require.NoError(t, gate.MarkProcessed(context.Background()))
	require.NoError(t, gate.MarkProcessed(context.Background()))

	assert.True(t, mailbox.labels["m1"][testLabel])
	assert.Equal(t, domain.TriggerReceivedProcessed, gate.State())
}

func TestTriggerGate_MarkProcessed_Switchable(t *testing.T) {
	mailbox := newMockMailbox(domain.MessageRef{ID: "m1"})
	cfg := testTriggerSettings()
	cfg.ApplyProcessedLabel = false
	gate := NewTriggerGate(mailbox, cfg)
	_, err := gate.IsProcessingRequired(context.Background())
	require.NoError(t, err)

	require.NoError(t, gate.MarkProcessed(context.Background()))

	assert.Empty(t, mailbox.applied)
	assert.Equal(t, []string{"m1"}, mailbox.read)
}

func TestTriggerGate_MarkProcessed_WithoutCheckSearchesFirst(t *testing.T) {
	mailbox := newMockMailbox(domain.MessageRef{ID: "m1"})
	gate := NewTriggerGate(mailbox, testTriggerSettings())

	require.NoError(t, gate.MarkProcessed(context.Background()))

	assert.Len(t, mailbox.searches, 1)
	assert.Equal(t, []string{"m1"}, mailbox.applied)
}

func TestTriggerGate_MarkProcessed_Errors(t *testing.T) {
	t.Run("label error", func(t *testing.T) {
		mailbox := newMockMailbox(domain.MessageRef{ID: "m1"})
		mailbox.applyErr = errors.New("insufficient permissions")
		gate := NewTriggerGate(mailbox, testTriggerSettings())
		_, _ = gate.IsProcessingRequired(context.Background())

		err := gate.MarkProcessed(context.Background())

		assert.True(t, errors.Is(err, domain.ErrTriggerUpdate))
		assert.Contains(t, err.Error(), "insufficient permissions")
	})

	t.Run("mark read error", func(t *testing.T) {
		mailbox := newMockMailbox(domain.MessageRef{ID: "m1"})
		mailbox.markReadErr = errors.New("boom")
		gate := NewTriggerGate(mailbox, testTriggerSettings())
		_, _ = gate.IsProcessingRequired(context.Background())

		err := gate.MarkProcessed(context.Background())

		assert.True(t, errors.Is(err, domain.ErrTriggerUpdate))
	})
}
