package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitHealthyRetriesUntilUp(t *testing.T) {
	calls := 0
	result, err := waitHealthy(func(r *HealthResult) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		r.Status = "ok"
		return nil
	}, time.Second, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, 3, calls)
}

func TestWaitHealthyGivesUp(t *testing.T) {
	_, err := waitHealthy(func(*HealthResult) error {
		return errors.New("connection refused")
	}, 5*time.Millisecond, time.Millisecond)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not healthy after 5ms")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWaitHealthyWithoutWaitTriesOnce(t *testing.T) {
	calls := 0
	_, err := waitHealthy(func(*HealthResult) error {
		calls++
		return errors.New("down")
	}, 0, time.Millisecond)

	assert.EqualError(t, err, "down")
	assert.Equal(t, 1, calls)
}
