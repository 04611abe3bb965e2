package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driving"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// Ensure RunOrchestrator implements the interface.
var _ driving.RunOrchestrator = (*RunOrchestrator)(nil)

// RunOrchestrator drives one run: trigger check, reconcile, download,
// upload, trigger update and notification.
//
// Run never returns an error. Every failure ends in exactly one error
// notice, and a success notice is only sent when nothing failed.
type RunOrchestrator struct {
	trigger    driving.TriggerGate
	provider   driven.PayslipProvider
	archive    driven.Archive
	notifier   driven.Notifier
	journal    driven.RunJournal
	companyTag string

	newID func() string
	now   func() time.Time
}

// NewRunOrchestrator creates a new run orchestrator.
// The trigger gate is only consulted when a run asks for it and the
// journal is optional.
func NewRunOrchestrator(
	trigger driving.TriggerGate,
	provider driven.PayslipProvider,
	archive driven.Archive,
	notifier driven.Notifier,
	journal driven.RunJournal,
	companyTag string,
) *RunOrchestrator {
	return &RunOrchestrator{
		trigger:    trigger,
		provider:   provider,
		archive:    archive,
		notifier:   notifier,
		journal:    journal,
		companyTag: companyTag,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Run executes the pipeline and describes what happened in the returned report.
func (o *RunOrchestrator) Run(ctx context.Context, opts domain.RunOptions) (report *domain.RunReport) {
	report = &domain.RunReport{
		RunID:     o.newID(),
		Options:   opts,
		StartedAt: o.now(),
	}

	defer func() {
		report.FinishedAt = o.now()
		logger.Info("run %s finished: %s in %s", report.RunID, report.Outcome, report.Duration().Round(time.Millisecond))
		o.record(ctx, report)
	}()
	defer func() {
		if r := recover(); r != nil {
			o.fail(ctx, report, domain.AtStage(domain.StageUnexpected, fmt.Errorf("panic: %v", r)))
		}
	}()

	logger.Section(fmt.Sprintf("Run %s", report.RunID))
	logger.Debug("mode=%s use_trigger=%t provider=%s", opts.Mode, opts.UseTrigger, o.provider.Name())

	if err := o.execute(ctx, report); err != nil {
		o.fail(ctx, report, err)
	}
	return report
}

func (o *RunOrchestrator) execute(ctx context.Context, report *domain.RunReport) error {
	opts := report.Options

	if !opts.Mode.IsValid() {
		return domain.AtStage(domain.StageConfiguration, fmt.Errorf("%w: %q", domain.ErrUnknownMode, opts.Mode))
	}

	if opts.UseTrigger {
		required, err := o.trigger.IsProcessingRequired(ctx)
		if err != nil {
			return domain.AtStage(domain.StageTriggerCheck, err)
		}
		if !required {
			logger.Info("no processing required (trigger %s)", o.trigger.State())
			report.Outcome = domain.OutcomeSkipped
			return nil
		}
	}

	var (
		results []domain.UploadResult
		err     error
	)
	switch opts.Mode {
	case domain.RunModeSync:
		results, err = o.syncMissing(ctx)
	case domain.RunModeDownloadLatest:
		results, err = o.downloadLatest(ctx)
	}
	report.Results = results
	if err != nil {
		return err
	}

	if len(results) == 0 {
		logger.Info("archive is up to date; nothing uploaded")
		report.Outcome = domain.OutcomeNoop
		return nil
	}

	if opts.UseTrigger {
		if err := o.trigger.MarkProcessed(ctx); err != nil {
			return domain.AtStage(domain.StageTriggerUpdate, err)
		}
	}

	if err := o.notifier.ReportSuccess(ctx, results); err != nil {
		return domain.AtStage(domain.StageNotify, err)
	}
	report.Outcome = domain.OutcomeSuccess
	return nil
}

// syncMissing archives every provider payslip that the archive lacks.
func (o *RunOrchestrator) syncMissing(ctx context.Context) ([]domain.UploadResult, error) {
	var (
		providerDocs []domain.ProviderDocument
		archived     []domain.ArchivedDocument
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard(func() error {
		docs, err := o.provider.List(gctx)
		if err != nil {
			return domain.AtStage(domain.StageDownload, err)
		}
		providerDocs = docs
		return nil
	}))
	g.Go(guard(func() error {
		docs, err := o.archive.List(gctx)
		if err != nil {
			return domain.AtStage(domain.StageDownload, err)
		}
		archived = docs
		return nil
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := ComputeMissing(providerDocs, archived, o.companyTag)
	logger.Info("%d of %d provider payslip(s) missing from archive", len(items), len(providerDocs))
	return o.archiveAll(ctx, items)
}

// downloadLatest archives the newest provider payslip regardless of archive state.
func (o *RunOrchestrator) downloadLatest(ctx context.Context) ([]domain.UploadResult, error) {
	docs, err := o.provider.List(ctx)
	if err != nil {
		return nil, domain.AtStage(domain.StageDownload, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	item := domain.WorkItem{Document: docs[0], CompanyTag: o.companyTag}
	return o.archiveAll(ctx, []domain.WorkItem{item})
}

// archiveAll downloads then uploads each item concurrently. The first
// failure cancels the remaining items. Results keep the order of items.
func (o *RunOrchestrator) archiveAll(ctx context.Context, items []domain.WorkItem) ([]domain.UploadResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]domain.UploadResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(guard(func() error {
			res, err := o.archiveOne(gctx, item)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *RunOrchestrator) archiveOne(ctx context.Context, item domain.WorkItem) (domain.UploadResult, error) {
	path, err := o.provider.Download(ctx, item)
	if err != nil {
		return domain.UploadResult{}, domain.AtStage(domain.StageDownload, err)
	}
	logger.Debug("downloaded %s to %s", item.Document.ID, path)

	res, err := o.archive.Upload(ctx, path)
	if err != nil {
		return domain.UploadResult{}, domain.AtStage(domain.StageUpload, err)
	}
	logger.Info("archived %s at %s", item.FileName(), res.FileURL)
	return res, nil
}

// fail records err on the report and sends the error notice.
func (o *RunOrchestrator) fail(ctx context.Context, report *domain.RunReport, err error) {
	report.Outcome = domain.OutcomeFailure
	report.Err = err

	var se *domain.StageError
	if errors.As(err, &se) {
		report.Stage = se.Stage
	}

	message := err.Error()
	logger.Error("%s", message)
	if nerr := o.notifier.ReportFailure(ctx, message); nerr != nil {
		logger.Error("could not send error notice: %v", nerr)
	}
}

func (o *RunOrchestrator) record(ctx context.Context, report *domain.RunReport) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Record(context.WithoutCancel(ctx), report); err != nil {
		logger.Warn("could not record run %s: %v", report.RunID, err)
	}
}

// guard converts a panic inside an errgroup goroutine into an error.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = domain.AtStage(domain.StageUnexpected, fmt.Errorf("panic: %v", r))
			}
		}()
		return fn()
	}
}
