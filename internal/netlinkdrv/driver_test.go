package netlinkdrv

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

func TestWithRetrySucceedsAfterTransientEBUSY(t *testing.T) {
	d := New(nil)
	attempts := 0
	err := d.withRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return syscall.EBUSY
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestWithRetryPassesThroughNonEBUSYImmediately(t *testing.T) {
	d := New(nil)
	attempts := 0
	sentinel := syscall.ENODEV
	start := time.Now()
	err := d.withRetry(context.Background(), func() error {
		attempts++
		return sentinel
	})
	require.Less(t, time.Since(start), 50*time.Millisecond)
	require.Equal(t, 1, attempts)
	kind, ok := vnerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, vnerr.NetworkingError, kind)
}

func TestWithRetryTimesOutPastAggregateCeiling(t *testing.T) {
	d := New(nil)
	err := d.withRetry(context.Background(), func() error {
		return syscall.EBUSY
	})
	kind, ok := vnerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, vnerr.NetworkingError, kind)
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	d := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	err := d.withRetry(ctx, func() error {
		return syscall.EBUSY
	})
	require.Less(t, time.Since(start), 200*time.Millisecond)
	require.Error(t, err)
}
