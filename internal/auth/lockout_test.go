package auth

import (
	"testing"
	"time"

	"basspress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFailure_LocksOnFifthAttempt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &models.User{}

	for i := 1; i <= MaxLoginAttempts-1; i++ {
		RecordFailure(user, now)
		assert.Equal(t, i, user.LoginAttempts)
		assert.Nil(t, user.LockUntil, "no lock before the threshold")
	}

	// The failure that reaches the threshold sets the lock.
	RecordFailure(user, now)
	require.NotNil(t, user.LockUntil)
	assert.Equal(t, MaxLoginAttempts, user.LoginAttempts)
	assert.Equal(t, now.Add(LockDuration), *user.LockUntil)
	assert.True(t, CheckLocked(user, now))
}

func TestRecordFailure_ExpiredLockRestartsCounter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)
	user := &models.User{
		LoginAttempts: MaxLoginAttempts,
		LockUntil:     &expired,
	}

	assert.False(t, CheckLocked(user, now), "elapsed lock no longer counts")

	RecordFailure(user, now)
	assert.Equal(t, 1, user.LoginAttempts, "counter restarts after expired lock")
	assert.Nil(t, user.LockUntil)
}

func TestRecordFailure_ActiveLockDoesNotExtend(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(time.Hour)
	user := &models.User{
		LoginAttempts: MaxLoginAttempts,
		LockUntil:     &until,
	}

	RecordFailure(user, now)
	require.NotNil(t, user.LockUntil)
	assert.Equal(t, until, *user.LockUntil, "existing lock keeps its expiry")
	assert.Equal(t, MaxLoginAttempts+1, user.LoginAttempts)
}

func TestRecordSuccess_ClearsStateAndStampsLogin(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(time.Hour)
	user := &models.User{
		LoginAttempts: 3,
		LockUntil:     &until,
	}

	RecordSuccess(user, now)
	assert.Zero(t, user.LoginAttempts)
	assert.Nil(t, user.LockUntil)
	require.NotNil(t, user.LastLogin)
	assert.Equal(t, now, *user.LastLogin)
}

func TestCheckLocked_Boundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exactlyNow := now
	user := &models.User{LockUntil: &exactlyNow}

	// A lock expiring exactly now is no longer active.
	assert.False(t, CheckLocked(user, now))
}
