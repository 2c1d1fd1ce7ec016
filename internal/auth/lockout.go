// Package auth implements the account-lockout state machine and the
// access/refresh token issuer.
package auth

import (
	"time"

	"basspress/internal/models"
)

const (
	// MaxLoginAttempts is the number of consecutive failures that locks
	// an account. The lock is set by the failure that reaches the
	// threshold, not the one after it.
	MaxLoginAttempts = 5
	// LockDuration is how long an account stays locked.
	LockDuration = 2 * time.Hour
)

// CheckLocked reports whether a login attempt against the user must be
// refused. A lock that has elapsed no longer counts.
func CheckLocked(u *models.User, now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// RecordFailure applies one failed login attempt to the user state.
// If a previous lock has already expired it is cleared and the counter
// restarts at 1. Otherwise the counter increments, and reaching
// MaxLoginAttempts on an unlocked account sets the lock.
//
// This is a pure state transform; persistence is the caller's job and
// should use the repository's atomic update so concurrent attempts
// cannot lose increments.
func RecordFailure(u *models.User, now time.Time) {
	if u.LockUntil != nil && !u.LockUntil.After(now) {
		u.LockUntil = nil
		u.LoginAttempts = 1
		return
	}

	u.LoginAttempts++
	if u.LoginAttempts >= MaxLoginAttempts && !CheckLocked(u, now) {
		until := now.Add(LockDuration)
		u.LockUntil = &until
	}
}

// RecordSuccess clears the failure counter and any lock unconditionally
// and stamps the last login time.
func RecordSuccess(u *models.User, now time.Time) {
	u.LoginAttempts = 0
	u.LockUntil = nil
	last := now
	u.LastLogin = &last
}
