package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driving"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// Ensure TriggerGate implements the interface.
var _ driving.TriggerGate = (*TriggerGate)(nil)

// TriggerGate decides whether a run is required based on the presence of an
// unprocessed trigger email, and marks the email once the run has succeeded.
//
// The messages matched by the last check are cached so that MarkProcessed
// acts on exactly the emails that justified the run.
type TriggerGate struct {
	mailbox driven.Mailbox
	cfg     domain.TriggerSettings

	mu       sync.Mutex
	state    domain.TriggerState
	messages []domain.MessageRef
}

// NewTriggerGate creates a trigger gate. cfg.ProcessedLabel must be the
// resolved label name.
func NewTriggerGate(mailbox driven.Mailbox, cfg domain.TriggerSettings) *TriggerGate {
	return &TriggerGate{
		mailbox: mailbox,
		cfg:     cfg,
		state:   domain.TriggerNotChecked,
	}
}

// State returns the gate's view after the last check.
func (g *TriggerGate) State() domain.TriggerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// IsProcessingRequired searches for the trigger email. It returns true only
// when at least one matching email lacks the processed label.
func (g *TriggerGate) IsProcessingRequired(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.flush()

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	messages, err := g.mailbox.Search(ctx, g.cfg.SearchCriteria)
	if err != nil {
		return false, fmt.Errorf("%w: search %q: %w", domain.ErrTriggerCheck, g.cfg.SearchCriteria, err)
	}
	g.messages = messages

	if len(messages) == 0 {
		g.state = domain.TriggerNotReceived
		logger.Debug("trigger: no email matches %q", g.cfg.SearchCriteria)
		return false, nil
	}

	for _, msg := range messages {
		labelled, err := g.mailbox.HasLabel(ctx, msg, g.cfg.ProcessedLabel)
		if err != nil {
			return false, fmt.Errorf("%w: check label on %s: %w", domain.ErrTriggerCheck, msg.ID, err)
		}
		if !labelled {
			g.state = domain.TriggerReceivedUnprocessed
			logger.Debug("trigger: message %s has not been processed", msg.ID)
			return true, nil
		}
	}

	g.state = domain.TriggerReceivedProcessed
	logger.Debug("trigger: all %d matching message(s) already processed", len(messages))
	return false, nil
}

// MarkProcessed applies the processed label and clears the unread state on
// the matched emails. Each behaviour can be switched off in configuration.
// Applying it twice has no further effect.
func (g *TriggerGate) MarkProcessed(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	if g.state == domain.TriggerNotChecked {
		messages, err := g.mailbox.Search(ctx, g.cfg.SearchCriteria)
		if err != nil {
			return fmt.Errorf("%w: search %q: %w", domain.ErrTriggerUpdate, g.cfg.SearchCriteria, err)
		}
		g.messages = messages
	}

	for _, msg := range g.messages {
		if g.cfg.ApplyProcessedLabel {
			if err := g.mailbox.ApplyLabel(ctx, msg, g.cfg.ProcessedLabel); err != nil {
				return fmt.Errorf("%w: label %s: %w", domain.ErrTriggerUpdate, msg.ID, err)
			}
		}
		if g.cfg.MarkAsRead {
			if err := g.mailbox.MarkRead(ctx, msg); err != nil {
				return fmt.Errorf("%w: mark read %s: %w", domain.ErrTriggerUpdate, msg.ID, err)
			}
		}
	}

	if len(g.messages) > 0 && g.cfg.ApplyProcessedLabel {
		g.state = domain.TriggerReceivedProcessed
	}
	return nil
}

// flush drops the messages cached by a previous check. Caller holds mu.
func (g *TriggerGate) flush() {
	g.messages = nil
	g.state = domain.TriggerNotChecked
}

func (g *TriggerGate) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.cfg.Timeout)
}
