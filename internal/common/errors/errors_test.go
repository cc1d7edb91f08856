// internal/common/errors/errors_test.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		retries   int
		retryable bool
		category  string
	}{
		{"parse", NewParseError(errors.New("unexpected EOF")), 0, false, "VALIDATION"},
		{"validation", NewInputValidationFailedError("targetAudience: required"), 0, false, "VALIDATION"},
		{"publisher lookup", NewPublisherLookupFailedError("sf", errors.New("conn refused")), 3, true, "PUBLISHER_STORE"},
		{"query execution", NewQueryExecutionFailedError("publisher_profile", errors.New("syntax")), 3, true, "DATABASE"},
		{"query timeout", NewQueryTimeoutError("publisher_profiles"), 2, true, "DATABASE"},
		{"invalid query type", NewInvalidQueryTypeError("drop_tables"), 0, false, "DATABASE"},
		{"search failed", NewSearchQueryFailedError("similar_publishers", errors.New("503")), 3, true, "SEARCH"},
		{"search timeout", NewSearchTimeoutError("publisher_audience"), 2, true, "SEARCH"},
		{"index not found", NewIndexNotFoundError("publishers"), 0, false, "SEARCH"},
		{"notification", NewNotificationSendFailedError("mix_recommendation", errors.New("throttled")), 3, true, "NOTIFICATION"},
		{"job timeout", NewJobTimeoutError("score", context.DeadlineExceeded), 2, true, "OTHER"},
		{"internal", NewInternalError(errors.New("nil map")), 0, false, "OTHER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.retryable, IsRetryableErrorCode(tt.err.Code))
			assert.Equal(t, tt.category, GetErrorCategory(tt.err.Code))

			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.retries, bpmnErr.Retries)
			assert.Equal(t, string(tt.err.Code), bpmnErr.Code)
		})
	}
}

func TestConvertToBPMNError_RetryableWithoutBudget(t *testing.T) {
	stdErr := NewInvalidQueryTypeError("drop_tables")
	stdErr.Retryable = true

	bpmnErr := ConvertToBPMNError(stdErr)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.Equal(t, false, bpmnErr.ToErrorVariables()["retryable"])
}

func TestToErrorVariables(t *testing.T) {
	stdErr := NewPublisherLookupFailedError("chicago", errors.New("timeout")).
		WithMetadata("market", "chicago")

	vars := ConvertToBPMNError(stdErr).ToErrorVariables()

	assert.Equal(t, "PUBLISHER_LOOKUP_FAILED", vars["errorCode"])
	assert.Equal(t, "Publisher pool could not be loaded", vars["errorMessage"])
	assert.Equal(t, "PUBLISHER_LOOKUP_FAILED", vars["originalErrorCode"])
	assert.Equal(t, "chicago", vars["market"])
	assert.Equal(t, true, vars["retryable"])
	assert.Contains(t, vars["errorDetails"], "market: chicago")
}

func TestNormalize(t *testing.T) {
	t.Run("wrapped standard error", func(t *testing.T) {
		inner := NewQueryTimeoutError("publisher_rate_card")
		got := Normalize(fmt.Errorf("load rate card: %w", inner))
		assert.Same(t, inner, got)
	})

	t.Run("plain error", func(t *testing.T) {
		got := Normalize(errors.New("boom"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.Equal(t, "boom", got.Details)
	})

	t.Run("cause is preserved", func(t *testing.T) {
		got := NewSearchQueryFailedError("publisher_audience", context.DeadlineExceeded)
		require.Error(t, got)
		assert.ErrorIs(t, got, context.DeadlineExceeded)
	})
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, int32(2), RemainingRetries(3, 3))
	assert.Equal(t, int32(3), RemainingRetries(5, 3))
	assert.Equal(t, int32(0), RemainingRetries(1, 2))
	assert.Equal(t, int32(2), RemainingRetries(0, 2))
}
