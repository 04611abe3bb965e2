package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent the failure taxonomy of a run.
// Adapters wrap these with fmt.Errorf("%w: %w", ...) so callers can test
// the category with errors.Is and still see the underlying cause.
var (
	// ErrTriggerCheck indicates the mailbox could not be queried for the trigger email.
	ErrTriggerCheck = errors.New("trigger check failed")

	// ErrTriggerUpdate indicates the processed label or read state could not be applied.
	ErrTriggerUpdate = errors.New("trigger update failed")

	// Login Errors.

	// ErrLogin wraps every failure of the provider login sequence.
	ErrLogin = errors.New("login failed")

	// ErrFormShape indicates the login page has no form or the form has no action.
	ErrFormShape = errors.New("login form not as expected")

	// ErrCookiesNotFound indicates the session cookies were absent or empty after login.
	ErrCookiesNotFound = errors.New("cookies not found")

	// Provider Errors.

	// ErrCatalogFetch indicates the provider's payslip listing could not be read.
	ErrCatalogFetch = errors.New("error while getting payslip list")

	// ErrDownload indicates a payslip could not be downloaded.
	ErrDownload = errors.New("error downloading payslip")

	// Archive Errors.

	// ErrContainerNotFound indicates the archive folder is missing or ambiguous.
	ErrContainerNotFound = errors.New("did not receive exactly one parent folder")

	// ErrUpload indicates a payslip could not be written to the archive.
	ErrUpload = errors.New("error uploading payslip")

	// Configuration Errors.

	// ErrUnknownMode indicates the run mode is not recognised.
	ErrUnknownMode = errors.New("unknown download mode")

	// ErrInvalidSettings indicates required settings are missing or malformed.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// BadResponseError is returned when the provider answers the login
// submission (or the login page request) with an unexpected status.
type BadResponseError struct {
	StatusCode int
	Body       string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("bad response: [%d] %s", e.StatusCode, e.Body)
}

// StatusError carries the transport status and body of a failed provider request.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d - %q", e.StatusCode, e.Body)
}

// ContainerNotFoundError reports how many archive folders matched a name.
type ContainerNotFoundError struct {
	Name    string
	Matches int
}

func (e *ContainerNotFoundError) Error() string {
	return fmt.Sprintf("%s: folder %q matched %d", ErrContainerNotFound, e.Name, e.Matches)
}

// Is reports whether target is ErrContainerNotFound.
func (e *ContainerNotFoundError) Is(target error) bool {
	return target == ErrContainerNotFound
}

// StageError ties a failure to the human-readable stage of the run it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + "\n" + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Stage descriptions used in failure reports.
const (
	StageTriggerCheck  = "Error checking processing is required."
	StageDownload      = "Error downloading payslip(s)."
	StageUpload        = "Error uploading payslip."
	StageTriggerUpdate = "Error updating labels on trigger email."
	StageNotify        = "Error sending completion report."
	StageConfiguration = "Error reading run configuration."
	StageUnexpected    = "Unexpected error in main body."
)

// AtStage wraps err with a stage description. Nil errors stay nil and an
// error that already carries a stage keeps its original one.
func AtStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}
