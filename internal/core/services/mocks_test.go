package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// --- Mock implementations shared by service tests ---

type sentMail struct {
	to      string
	subject string
	body    string
}

// mockMailbox implements driven.Mailbox for testing.
type mockMailbox struct {
	mu sync.Mutex

	messages []domain.MessageRef
	labels   map[string]map[string]bool

	searchErr   error
	hasLabelErr error
	applyErr    error
	markReadErr error
	sendErr     error
	sendHangs   bool

	searches []string
	applied  []string
	read     []string
	sent     []sentMail
}

func newMockMailbox(messages ...domain.MessageRef) *mockMailbox {
	return &mockMailbox{
		messages: messages,
		labels:   make(map[string]map[string]bool),
	}
}

func (m *mockMailbox) Search(_ context.Context, query string) ([]domain.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return append([]domain.MessageRef(nil), m.messages...), nil
}

func (m *mockMailbox) HasLabel(_ context.Context, msg domain.MessageRef, label string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasLabelErr != nil {
		return false, m.hasLabelErr
	}
	return m.labels[msg.ID][label], nil
}

func (m *mockMailbox) ApplyLabel(_ context.Context, msg domain.MessageRef, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	if m.labels[msg.ID] == nil {
		m.labels[msg.ID] = make(map[string]bool)
	}
	m.labels[msg.ID][label] = true
	m.applied = append(m.applied, msg.ID)
	return nil
}

func (m *mockMailbox) MarkRead(_ context.Context, msg domain.MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markReadErr != nil {
		return m.markReadErr
	}
	m.read = append(m.read, msg.ID)
	return nil
}

func (m *mockMailbox) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	hang := m.sendHangs
	m.mu.Unlock()
	if hang {
		<-ctx.Done()
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *mockMailbox) label(id, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.labels[id] == nil {
		m.labels[id] = make(map[string]bool)
	}
	m.labels[id][label] = true
}

// errorNotices returns the sent mails whose subject marks an error.
func (m *mockMailbox) errorNotices() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if strings.HasSuffix(s.subject, " ERROR") {
			out = append(out, s)
		}
	}
	return out
}

// successNotices returns the sent mails that are not error notices.
func (m *mockMailbox) successNotices() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if !strings.HasSuffix(s.subject, " ERROR") {
			out = append(out, s)
		}
	}
	return out
}

// mockProvider implements driven.PayslipProvider for testing.
type mockProvider struct {
	mu sync.Mutex

	docs        []domain.ProviderDocument
	listErr     error
	downloadErr map[string]error
	panicOn     string
	dir         string

	listCalls  int
	downloaded []string
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) List(_ context.Context) ([]domain.ProviderDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.docs, nil
}

func (m *mockProvider) Download(_ context.Context, item domain.WorkItem) (string, error) {
	if item.Document.ID == m.panicOn && m.panicOn != "" {
		panic("provider exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.downloadErr[item.Document.ID]; err != nil {
		return "", err
	}
	m.downloaded = append(m.downloaded, item.Document.ID)
	return filepath.Join(m.dir, item.FileName()), nil
}

func (m *mockProvider) downloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.downloaded...)
}

// mockArchive implements driven.Archive for testing.
type mockArchive struct {
	mu sync.Mutex

	archived  []domain.ArchivedDocument
	listErr   error
	uploadErr error
	delays    map[string]time.Duration

	uploads []string
}

const (
	testFolderURL = "https://drive.example/folders/payslips"
	testFileURL   = "https://drive.example/file/"
)

func (m *mockArchive) List(_ context.Context) ([]domain.ArchivedDocument, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.archived, nil
}

func (m *mockArchive) Upload(ctx context.Context, localPath string) (domain.UploadResult, error) {
	name := filepath.Base(localPath)
	if d := m.delays[name]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return domain.UploadResult{}, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return domain.UploadResult{}, m.uploadErr
	}
	m.uploads = append(m.uploads, name)
	return domain.UploadResult{FileURL: testFileURL + name, FolderURL: testFolderURL}, nil
}

func (m *mockArchive) ResolveContainer(_ context.Context, _ string) (domain.FolderInfo, error) {
	return domain.FolderInfo{ID: "folder", URL: testFolderURL}, nil
}

func (m *mockArchive) uploaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...)
}

// mockJournal implements driven.RunJournal for testing.
type mockJournal struct {
	mu        sync.Mutex
	records   []domain.RunRecord
	recordErr error
}

func (m *mockJournal) Record(_ context.Context, report *domain.RunReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records = append(m.records, report.Record())
	return nil
}

func (m *mockJournal) Recent(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RunRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *mockJournal) Close() error { return nil }
