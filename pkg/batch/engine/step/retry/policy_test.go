package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
)

var errFlaky = errors.New("flaky")

func TestShouldRetry(t *testing.T) {
	p := NewPolicy(3, time.Millisecond, errFlaky)

	assert.False(t, p.ShouldRetry(nil))
	assert.True(t, p.ShouldRetry(exception.NewBatchError("ingest", "upload", nil, false, true)))
	assert.False(t, p.ShouldRetry(exception.NewBatchError("ingest", "upload", nil, true, false)))
	assert.True(t, p.ShouldRetry(errFlaky))
	assert.True(t, p.ShouldRetry(errors.Join(errors.New("outer"), errFlaky)))
	assert.False(t, p.ShouldRetry(errors.New("other")))
	assert.False(t, p.ShouldRetry(context.Canceled))
}

func TestBackoffDoubles(t *testing.T) {
	p := NewPolicy(4, 10*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, p.GetBackoffInterval(2))
	assert.Equal(t, 20*time.Millisecond, p.GetBackoffInterval(3))
	assert.Equal(t, 40*time.Millisecond, p.GetBackoffInterval(4))
	assert.Equal(t, 1, NewPolicy(0, 0).GetMaxAttempts())
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		calls := 0
		err := Do(ctx, NewPolicy(3, time.Millisecond, errFlaky), "upload", func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errFlaky
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("GivesUp", func(t *testing.T) {
		calls := 0
		err := Do(ctx, NewPolicy(2, time.Millisecond, errFlaky), "upload", func(ctx context.Context) error {
			calls++
			return errFlaky
		})
		assert.ErrorIs(t, err, errFlaky)
		assert.Equal(t, 2, calls)
	})

	t.Run("NotRetryable", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := Do(ctx, NewPolicy(5, time.Millisecond, errFlaky), "upload", func(ctx context.Context) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("CancelledWhileWaiting", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		err := Do(cctx, NewPolicy(3, time.Hour, errFlaky), "upload", func(ctx context.Context) error {
			cancel()
			return errFlaky
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
