package domain

import "time"

// RunMode selects how payslips are chosen for download.
type RunMode string

// Available run modes.
const (
	// RunModeSync downloads every provider payslip missing from the archive.
	RunModeSync RunMode = "sync"

	// RunModeDownloadLatest downloads the newest provider payslip regardless of archive state.
	RunModeDownloadLatest RunMode = "downloadLatest"
)

// IsValid returns true if the run mode is recognised.
func (m RunMode) IsValid() bool {
	switch m {
	case RunModeSync, RunModeDownloadLatest:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m RunMode) String() string {
	return string(m)
}

// RunOptions parameterise a single run.
type RunOptions struct {
	// UseTrigger gates the run on an unprocessed trigger email.
	UseTrigger bool

	// Mode selects the download strategy.
	Mode RunMode
}

// RunOutcome summarises how a run ended.
type RunOutcome string

// Possible run outcomes.
const (
	// OutcomeSkipped means the trigger gate said no processing was required.
	OutcomeSkipped RunOutcome = "skipped"

	// OutcomeNoop means nothing was missing from the archive.
	OutcomeNoop RunOutcome = "noop"

	// OutcomeSuccess means at least one payslip was archived and reported.
	OutcomeSuccess RunOutcome = "success"

	// OutcomeFailure means a stage failed and an error notice was attempted.
	OutcomeFailure RunOutcome = "failure"
)

// RunReport records what a run did.
type RunReport struct {
	RunID      string
	Options    RunOptions
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    RunOutcome

	// Results are ordered like the work items that produced them.
	Results []UploadResult

	// Stage and Err are set when Outcome is OutcomeFailure.
	Stage string
	Err   error
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunRecord is the persisted form of a RunReport.
type RunRecord struct {
	RunID      string
	Mode       RunMode
	UseTrigger bool
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    RunOutcome
	Uploaded   int
	Files      []string
	Stage      string
	Message    string
}

// Record converts the report into its persisted form.
func (r *RunReport) Record() RunRecord {
	rec := RunRecord{
		RunID:      r.RunID,
		Mode:       r.Options.Mode,
		UseTrigger: r.Options.UseTrigger,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Outcome:    r.Outcome,
		Uploaded:   len(r.Results),
		Stage:      r.Stage,
	}
	for _, res := range r.Results {
		rec.Files = append(rec.Files, res.FileURL)
	}
	if r.Err != nil {
		rec.Message = r.Err.Error()
	}
	return rec
}

// TriggerState is the trigger gate's view of the trigger email in one run.
type TriggerState int

const (
	// TriggerNotChecked is the initial state.
	TriggerNotChecked TriggerState = iota

	// TriggerReceivedUnprocessed means a matching email awaits processing.
	TriggerReceivedUnprocessed

	// TriggerReceivedProcessed means every matching email carries the processed label.
	TriggerReceivedProcessed

	// TriggerNotReceived means no matching email was found.
	TriggerNotReceived
)

// String returns a human-readable state name.
func (s TriggerState) String() string {
	switch s {
	case TriggerNotChecked:
		return "not checked"
	case TriggerReceivedUnprocessed:
		return "received, unprocessed"
	case TriggerReceivedProcessed:
		return "received, processed"
	case TriggerNotReceived:
		return "not received"
	default:
		return unknownDescription
	}
}

const unknownDescription = "Unknown"
