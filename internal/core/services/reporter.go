package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// Ensure Reporter implements the interface.
var _ driven.Notifier = (*Reporter)(nil)

// DefaultSendTimeout bounds each notice unless WithTimeout says otherwise.
const DefaultSendTimeout = 30 * time.Second

// Reporter emails completion and error notices through the mailbox.
type Reporter struct {
	mailbox driven.Mailbox
	to      string
	subject string
	timeout time.Duration
}

// NewReporter creates a reporter sending to the given address.
func NewReporter(mailbox driven.Mailbox, to, subject string) *Reporter {
	return &Reporter{
		mailbox: mailbox,
		to:      to,
		subject: subject,
		timeout: DefaultSendTimeout,
	}
}

// WithTimeout sets the per-notice send timeout. Non-positive values keep
// the current one.
func (r *Reporter) WithTimeout(d time.Duration) *Reporter {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// ReportSuccess sends the completion notice listing every archived file
// followed by the archive folder.
func (r *Reporter) ReportSuccess(ctx context.Context, results []domain.UploadResult) error {
	if err := r.send(ctx, r.subject, successBody(results)); err != nil {
		return fmt.Errorf("send completion notice: %w", err)
	}
	logger.Info("sent completion notice to %s", r.to)
	return nil
}

// ReportFailure sends the error notice.
func (r *Reporter) ReportFailure(ctx context.Context, message string) error {
	if err := r.send(ctx, r.subject+" ERROR", failureBody(message)); err != nil {
		return fmt.Errorf("send error notice: %w", err)
	}
	logger.Info("sent error notice to %s", r.to)
	return nil
}

func (r *Reporter) send(ctx context.Context, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.mailbox.Send(ctx, r.to, subject, body)
}

func successBody(results []domain.UploadResult) string {
	urls := make([]string, 0, len(results))
	folder := ""
	for _, res := range results {
		urls = append(urls, html.EscapeString(res.FileURL))
		if folder == "" {
			folder = res.FolderURL
		}
	}

	var b strings.Builder
	b.WriteString("Payslip uploader complete.\n<p>\nFiles available at:\n")
	b.WriteString(strings.Join(urls, "<br>\n"))
	b.WriteString("<br>\nFolder: ")
	b.WriteString(html.EscapeString(folder))
	return b.String()
}

func failureBody(message string) string {
	escaped := html.EscapeString(message)
	return "Error running payslip uploader.<p>" + strings.ReplaceAll(escaped, "\n", "<br>\n")
}
