package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckCooldown(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name          string
		lastActionMs  int64
		cooldown      time.Duration
		isAdmin       bool
		wantAllowed   bool
		wantRemaining time.Duration
	}{
		{
			name:         "never acted is allowed",
			lastActionMs: 0,
			cooldown:     2 * time.Second,
			wantAllowed:  true,
		},
		{
			name:          "inside window is denied with remaining wait",
			lastActionMs:  now.Add(-500 * time.Millisecond).UnixMilli(),
			cooldown:      2 * time.Second,
			wantRemaining: 1500 * time.Millisecond,
		},
		{
			name:         "exactly at the window boundary is allowed",
			lastActionMs: now.Add(-2 * time.Second).UnixMilli(),
			cooldown:     2 * time.Second,
			wantAllowed:  true,
		},
		{
			name:         "past the window is allowed",
			lastActionMs: now.Add(-time.Minute).UnixMilli(),
			cooldown:     2 * time.Second,
			wantAllowed:  true,
		},
		{
			name:         "admin bypasses cooldown",
			lastActionMs: now.Add(-100 * time.Millisecond).UnixMilli(),
			cooldown:     2 * time.Second,
			isAdmin:      true,
			wantAllowed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := CheckCooldown(tt.lastActionMs, now, tt.cooldown, tt.isAdmin)
			assert.Equal(t, tt.wantAllowed, status.Allowed)
			if !tt.wantAllowed {
				assert.Equal(t, tt.wantRemaining, status.Remaining)
			}
		})
	}
}

func TestRemainingSecondsRoundsUp(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      int64
	}{
		{0, 0},
		{-time.Second, 0},
		{1 * time.Millisecond, 1},
		{999 * time.Millisecond, 1},
		{1000 * time.Millisecond, 1},
		{1500 * time.Millisecond, 2},
		{2 * time.Second, 2},
	}

	for _, tt := range tests {
		got := CooldownStatus{Remaining: tt.remaining}.RemainingSeconds()
		assert.Equal(t, tt.want, got, "remaining %s", tt.remaining)
	}
}
