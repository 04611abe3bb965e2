package driven

import (
	"context"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// Mailbox is the email account that receives trigger emails and sends notices.
type Mailbox interface {
	// Search returns the messages matching a provider search query.
	Search(ctx context.Context, query string) ([]domain.MessageRef, error)

	// HasLabel reports whether the message carries the named label.
	HasLabel(ctx context.Context, msg domain.MessageRef, label string) (bool, error)

	// ApplyLabel adds the named label to the message, creating the label if needed.
	ApplyLabel(ctx context.Context, msg domain.MessageRef, label string) error

	// MarkRead clears the unread state of the message.
	MarkRead(ctx context.Context, msg domain.MessageRef) error

	// Send delivers an HTML email.
	Send(ctx context.Context, to, subject, htmlBody string) error
}
