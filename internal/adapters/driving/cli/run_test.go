package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

func TestRunCmd_Use(t *testing.T) {
	assert.Equal(t, "run", runCmd.Use)
	assert.Contains(t, runCmd.Long, "exits 0")
}

func TestRunCmd_DefaultOptions(t *testing.T) {
	orch := &mockOrchestrator{report: successReport()}
	setup(t, Config{
		SettingsService: &mockSettingsService{settings: validSettings()},
		NewRuntime:      runtimeWith(orch, &mockTrigger{}, nil),
	})

	out, err := execute(t, "", "run")
	require.NoError(t, err)

	require.Len(t, orch.opts, 1)
	assert.Equal(t, domain.RunOptions{UseTrigger: true, Mode: domain.RunModeSync}, orch.opts[0])
	assert.Contains(t, out, "Run run-1: success (1.5s)")
	assert.Contains(t, out, "https://drive/file-1")
	assert.Contains(t, out, "Folder: https://drive/folder")
}

func TestRunCmd_FlagsOverrideSettings(t *testing.T) {
	orch := &mockOrchestrator{report: &domain.RunReport{RunID: "r", Outcome: domain.OutcomeNoop}}
	settings := validSettings()
	settings.Trigger.SearchCriteria = ""

	var seen *domain.Settings
	setup(t, Config{
		SettingsService: &mockSettingsService{settings: settings},
		NewRuntime:      runtimeWith(orch, &mockTrigger{}, &seen),
	})

	out, err := execute(t, "", "run", "--mode", "downloadLatest", "--no-trigger")
	require.NoError(t, err)

	require.Len(t, orch.opts, 1)
	assert.Equal(t, domain.RunOptions{UseTrigger: false, Mode: domain.RunModeDownloadLatest}, orch.opts[0])
	assert.False(t, seen.Run.UseTrigger)
	assert.Contains(t, out, "Archive already up to date.")
}

func TestRunCmd_FailedRunExitsCleanly(t *testing.T) {
	orch := &mockOrchestrator{report: &domain.RunReport{
		RunID:   "r",
		Outcome: domain.OutcomeFailure,
		Stage:   domain.StageDownload,
		Err:     domain.AtStage(domain.StageDownload, domain.ErrCatalogFetch),
	}}
	setup(t, Config{
		SettingsService: &mockSettingsService{settings: validSettings()},
		NewRuntime:      runtimeWith(orch, &mockTrigger{}, nil),
	})

	out, err := execute(t, "", "run")
	require.NoError(t, err)
	assert.Contains(t, out, "failure")
	assert.Contains(t, out, "Error downloading payslip(s).")
}

func TestRunCmd_UnknownModeReachesOrchestrator(t *testing.T) {
	orch := &mockOrchestrator{report: &domain.RunReport{RunID: "r", Outcome: domain.OutcomeFailure}}
	setup(t, Config{
		SettingsService: &mockSettingsService{settings: validSettings()},
		NewRuntime:      runtimeWith(orch, &mockTrigger{}, nil),
	})

	_, err := execute(t, "", "run", "--mode", "bogus")
	require.NoError(t, err)
	require.Len(t, orch.opts, 1)
	assert.Equal(t, domain.RunMode("bogus"), orch.opts[0].Mode)
}

func TestRunCmd_Skipped(t *testing.T) {
	orch := &mockOrchestrator{report: &domain.RunReport{RunID: "r", Outcome: domain.OutcomeSkipped}}
	setup(t, Config{
		SettingsService: &mockSettingsService{settings: validSettings()},
		NewRuntime:      runtimeWith(orch, &mockTrigger{}, nil),
	})

	out, err := execute(t, "", "run")
	require.NoError(t, err)
	assert.Contains(t, out, "No unprocessed trigger email.")
}

func TestRunCmd_InvalidSettings(t *testing.T) {
	orch := &mockOrchestrator{}
	setup(t, Config{
		SettingsService: &mockSettingsService{settings: domain.DefaultSettings()},
		NewRuntime:      runtimeWith(orch, &mockTrigger{}, nil),
	})

	_, err := execute(t, "", "run")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
	assert.Empty(t, orch.opts)
}

func TestRunCmd_RuntimeError(t *testing.T) {
	setup(t, Config{
		SettingsService: &mockSettingsService{settings: validSettings()},
		NewRuntime:      failingRuntime,
	})

	_, err := execute(t, "", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}

func TestRunCmd_NotConfigured(t *testing.T) {
	setup(t, Config{})

	_, err := execute(t, "", "run")
	assert.ErrorIs(t, err, errNotConfigured)
}
