package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"slices"
	"strings"
	"sync"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/payslip-saver/internal/connectors/google"
	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// labelUnread is the system label Gmail uses for unread messages.
const labelUnread = "UNREAD"

// webURLPrefix opens a message in the Gmail web client.
const webURLPrefix = "https://mail.google.com/mail/u/0/#all/"

// Mailbox implements driven.Mailbox over the Gmail API.
type Mailbox struct {
	api     API
	limiter *google.RateLimiter

	mu       sync.Mutex
	labelIDs map[string]string
}

// Verify interface compliance.
var _ driven.Mailbox = (*Mailbox)(nil)

// New creates a mailbox for the authenticated Gmail account.
func New(svc *gmail.Service) *Mailbox {
	return NewWithAPI(&serviceAPI{svc: svc}, google.NewRateLimiter(google.ServiceGmail))
}

// NewWithAPI creates a mailbox over an arbitrary API implementation.
func NewWithAPI(api API, limiter *google.RateLimiter) *Mailbox {
	return &Mailbox{api: api, limiter: limiter}
}

// Search returns every message matching query, following pagination.
func (m *Mailbox) Search(ctx context.Context, query string) ([]domain.MessageRef, error) {
	var (
		refs      []domain.MessageRef
		pageToken string
	)
	for {
		var resp *gmail.ListMessagesResponse
		err := m.limiter.Do(ctx, func() error {
			var err error
			resp, err = m.api.ListMessages(ctx, query, pageToken)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		for _, msg := range resp.Messages {
			refs = append(refs, domain.MessageRef{
				ID:       msg.Id,
				ThreadID: msg.ThreadId,
				WebURL:   webURLPrefix + msg.Id,
			})
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	logger.Debug("gmail: %d message(s) match %q", len(refs), query)
	return refs, nil
}

// HasLabel reports whether msg carries the label. A label that does not
// exist in the account is carried by no message.
func (m *Mailbox) HasLabel(ctx context.Context, msg domain.MessageRef, label string) (bool, error) {
	id, ok, err := m.lookupLabel(ctx, label)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	var full *gmail.Message
	err = m.limiter.Do(ctx, func() error {
		var err error
		full, err = m.api.GetMessage(ctx, msg.ID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("get message %s: %w", msg.ID, err)
	}
	return slices.Contains(full.LabelIds, id), nil
}

// ApplyLabel adds the label to msg, creating the label first if needed.
func (m *Mailbox) ApplyLabel(ctx context.Context, msg domain.MessageRef, label string) error {
	id, err := m.ensureLabel(ctx, label)
	if err != nil {
		return err
	}
	return m.modify(ctx, msg.ID, &gmail.ModifyMessageRequest{AddLabelIds: []string{id}})
}

// MarkRead removes the UNREAD label from msg.
func (m *Mailbox) MarkRead(ctx context.Context, msg domain.MessageRef) error {
	return m.modify(ctx, msg.ID, &gmail.ModifyMessageRequest{RemoveLabelIds: []string{labelUnread}})
}

// Send delivers an HTML email from the authenticated account.
func (m *Mailbox) Send(ctx context.Context, to, subject, htmlBody string) error {
	raw := base64.URLEncoding.EncodeToString(buildMessage(to, subject, htmlBody))
	err := m.limiter.Do(ctx, func() error {
		return m.api.SendMessage(ctx, &gmail.Message{Raw: raw})
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	logger.Info("gmail: sent %q to %s", subject, to)
	return nil
}

func (m *Mailbox) modify(ctx context.Context, id string, req *gmail.ModifyMessageRequest) error {
	err := m.limiter.Do(ctx, func() error {
		return m.api.ModifyMessage(ctx, id, req)
	})
	if err != nil {
		return fmt.Errorf("modify message %s: %w", id, err)
	}
	return nil
}

// lookupLabel resolves a label name to its ID. Names are loaded once and
// cached for the lifetime of the mailbox.
func (m *Mailbox) lookupLabel(ctx context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.labelIDs == nil {
		var labels []*gmail.Label
		err := m.limiter.Do(ctx, func() error {
			var err error
			labels, err = m.api.ListLabels(ctx)
			return err
		})
		if err != nil {
			return "", false, fmt.Errorf("list labels: %w", err)
		}
		m.labelIDs = make(map[string]string, len(labels))
		for _, l := range labels {
			m.labelIDs[l.Name] = l.Id
		}
	}
	id, ok := m.labelIDs[name]
	return id, ok, nil
}

func (m *Mailbox) ensureLabel(ctx context.Context, name string) (string, error) {
	id, ok, err := m.lookupLabel(ctx, name)
	if err != nil || ok {
		return id, err
	}

	var created *gmail.Label
	err = m.limiter.Do(ctx, func() error {
		var err error
		created, err = m.api.CreateLabel(ctx, &gmail.Label{
			Name:                  name,
			LabelListVisibility:   "labelShow",
			MessageListVisibility: "show",
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create label %q: %w", name, err)
	}
	logger.Info("gmail: created label %q", name)

	m.mu.Lock()
	m.labelIDs[name] = created.Id
	m.mu.Unlock()
	return created.Id, nil
}

// buildMessage renders an RFC 2822 message with an HTML body.
func buildMessage(to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("\r\n")
	body := base64.StdEncoding.EncodeToString([]byte(htmlBody))
	for len(body) > 76 {
		b.WriteString(body[:76] + "\r\n")
		body = body[76:]
	}
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}
