package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings *domain.Settings
	getErr   error
	setErr   error
	set      map[string]any
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	cp := *m.settings
	return &cp, nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = map[string]any{}
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.settings.Validate()
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return *domain.DefaultSettings()
}

// mockHistoryService implements driving.HistoryService for testing.
type mockHistoryService struct {
	records []domain.RunRecord
	err     error
	limit   int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.limit = limit
	return m.records, m.err
}

// mockOrchestrator implements driving.RunOrchestrator for testing.
type mockOrchestrator struct {
	report *domain.RunReport
	opts   []domain.RunOptions
}

func (m *mockOrchestrator) Run(_ context.Context, opts domain.RunOptions) *domain.RunReport {
	m.opts = append(m.opts, opts)
	return m.report
}

// mockTrigger implements driving.TriggerGate for testing.
type mockTrigger struct {
	required bool
	state    domain.TriggerState
	err      error
	marked   int
}

func (m *mockTrigger) IsProcessingRequired(_ context.Context) (bool, error) {
	return m.required, m.err
}

func (m *mockTrigger) MarkProcessed(_ context.Context) error {
	m.marked++
	return nil
}

func (m *mockTrigger) State() domain.TriggerState {
	return m.state
}

func validSettings() *domain.Settings {
	s := domain.DefaultSettings()
	s.CompanyName = "Acme"
	s.ProviderSite.Username = "user"
	s.ProviderSite.Password = "secret-password"
	s.Google.ClientSecretFile = "client_secret.json"
	s.Google.TokenFile = "token.json"
	s.Reporter.To = "me@example.com"
	s.Trigger.SearchCriteria = "from:payroll is:unread"
	return s
}

func successReport() *domain.RunReport {
	start := time.Date(2020, 5, 1, 9, 0, 0, 0, time.UTC)
	return &domain.RunReport{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Outcome:    domain.OutcomeSuccess,
		Results: []domain.UploadResult{
			{FileURL: "https://drive/file-1", FolderURL: "https://drive/folder"},
		},
	}
}

// setup installs the given services and restores the previous ones when the test ends.
func setup(t *testing.T, cfg Config) {
	t.Helper()
	oldSettings, oldHistory, oldRuntime, oldVersion := settingsService, historyService, newRuntime, version
	Configure(cfg)
	t.Cleanup(func() {
		settingsService, historyService, newRuntime, version = oldSettings, oldHistory, oldRuntime, oldVersion
	})
}

// runtimeWith returns a factory handing out fixed services and recording the settings it saw.
func runtimeWith(orch *mockOrchestrator, trig *mockTrigger, seen **domain.Settings) RuntimeFactory {
	return func(_ context.Context, s *domain.Settings) (*Runtime, error) {
		if seen != nil {
			*seen = s
		}
		return &Runtime{Orchestrator: orch, Trigger: trig}, nil
	}
}

func failingRuntime(_ context.Context, _ *domain.Settings) (*Runtime, error) {
	return nil, errors.New("no token")
}

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	runMode, runNoTrigger, historyLimit = "", false, 10
	authManual, authTimeout, verbose = false, 5*time.Minute, false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
