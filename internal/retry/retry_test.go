package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

var errFlaky = &domain.EmbeddingError{Transient: true, Err: errors.New("rate limited")}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Default.Do(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransient(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, Backoff: 1}

	calls := 0
	err := p.Do(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 2, Delay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func(_ context.Context) error {
		calls++
		return errFlaky
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, domain.IsTransient(err))
}

func TestDo_PermanentFailureNotRetried(t *testing.T) {
	p := Policy{MaxAttempts: 5, Delay: time.Millisecond}
	permanent := &domain.EmbeddingError{Transient: false, Err: errors.New("input too long")}

	calls := 0
	err := p.Do(context.Background(), func(_ context.Context) error {
		calls++
		return permanent
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	p := Policy{MaxAttempts: 10, Delay: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(_ context.Context) error {
			return errFlaky
		})
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestNone_SingleAttempt(t *testing.T) {
	calls := 0
	err := None.Do(context.Background(), func(_ context.Context) error {
		calls++
		return errFlaky
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
