// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithExponentialBackoff(t *testing.T) {
	ctx := context.Background()
	config := NewRetryConfig(3, time.Millisecond, 5*time.Millisecond)

	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		err := RetryWithExponentialBackoff(ctx, config, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := RetryWithExponentialBackoff(ctx, config, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts and surfaces last error", func(t *testing.T) {
		calls := 0
		lastErr := errors.New("still broken")
		err := RetryWithExponentialBackoff(ctx, config, func() error {
			calls++
			return lastErr
		})
		require.Error(t, err)
		assert.Equal(t, config.MaxAttempts, calls)
		assert.True(t, errors.Is(err, lastErr))
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := RetryWithExponentialBackoff(cancelled, config, func() error {
			return errors.New("transient")
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
