package services

import "time"

// CooldownStatus reports whether a new metered action may start, and if not,
// how long the caller still has to wait.
type CooldownStatus struct {
	Allowed   bool
	Remaining time.Duration
}

// RemainingSeconds is the remaining wait rounded up to whole seconds, for
// the user-facing message.
func (s CooldownStatus) RemainingSeconds() int64 {
	if s.Remaining <= 0 {
		return 0
	}
	return int64((s.Remaining + time.Second - 1) / time.Second)
}

// CheckCooldown gates a new metered action on the time elapsed since the
// last one. Admins bypass the cooldown unconditionally. lastActionMs is
// unix milliseconds, 0 meaning the account never acted.
func CheckCooldown(lastActionMs int64, now time.Time, cooldown time.Duration, isAdmin bool) CooldownStatus {
	if isAdmin || lastActionMs == 0 {
		return CooldownStatus{Allowed: true}
	}
	elapsed := now.Sub(time.UnixMilli(lastActionMs))
	if elapsed >= cooldown {
		return CooldownStatus{Allowed: true}
	}
	return CooldownStatus{Remaining: cooldown - elapsed}
}
