package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrTriggerCheck", ErrTriggerCheck},
		{"ErrTriggerUpdate", ErrTriggerUpdate},
		{"ErrLogin", ErrLogin},
		{"ErrFormShape", ErrFormShape},
		{"ErrCookiesNotFound", ErrCookiesNotFound},
		{"ErrCatalogFetch", ErrCatalogFetch},
		{"ErrDownload", ErrDownload},
		{"ErrContainerNotFound", ErrContainerNotFound},
		{"ErrUpload", ErrUpload},
		{"ErrUnknownMode", ErrUnknownMode},
		{"ErrInvalidSettings", ErrInvalidSettings},
		{"ErrNotFound", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestLoginErrorWrapping(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrLogin, ErrCookiesNotFound)

	assert.Equal(t, "login failed: cookies not found", err.Error())
	assert.True(t, errors.Is(err, ErrLogin))
	assert.True(t, errors.Is(err, ErrCookiesNotFound))
	assert.False(t, errors.Is(err, ErrFormShape))
}

func TestBadResponseError(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrLogin, &BadResponseError{StatusCode: 503, Body: "Fake problem"})

	assert.Equal(t, "login failed: bad response: [503] Fake problem", err.Error())

	var bre *BadResponseError
	require.True(t, errors.As(err, &bre))
	assert.Equal(t, 503, bre.StatusCode)
}

func TestStatusError(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrDownload, &StatusError{StatusCode: 503, Body: "This is a dud payslip"})

	assert.Equal(t, `error downloading payslip: 503 - "This is a dud payslip"`, err.Error())
	assert.True(t, errors.Is(err, ErrDownload))
}

func TestContainerNotFoundError(t *testing.T) {
	err := fmt.Errorf("resolve folder: %w", &ContainerNotFoundError{Name: "Payslips", Matches: 4})

	assert.True(t, errors.Is(err, ErrContainerNotFound))
	assert.Contains(t, err.Error(), `folder "Payslips" matched 4`)
}

func TestAtStage(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, AtStage(StageDownload, nil))
	})

	t.Run("wraps with stage description", func(t *testing.T) {
		err := AtStage(StageUpload, ErrUpload)

		var se *StageError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, StageUpload, se.Stage)
		assert.True(t, errors.Is(err, ErrUpload))
		assert.Equal(t, "Error uploading payslip.\nerror uploading payslip", err.Error())
	})

	t.Run("keeps the innermost stage", func(t *testing.T) {
		inner := AtStage(StageDownload, ErrDownload)
		outer := AtStage(StageUnexpected, fmt.Errorf("pipeline: %w", inner))

		var se *StageError
		require.True(t, errors.As(outer, &se))
		assert.Equal(t, StageDownload, se.Stage)
	})
}
