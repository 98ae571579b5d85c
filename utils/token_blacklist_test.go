package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBlacklistToken(t *testing.T) {
	require.False(t, IsTokenBlacklisted("never-seen"))

	BlacklistToken("revoked-token", time.Now().Add(time.Minute))
	require.True(t, IsTokenBlacklisted("revoked-token"))

	// Already expired tokens are not worth tracking.
	BlacklistToken("stale-token", time.Now().Add(-time.Minute))
	require.False(t, IsTokenBlacklisted("stale-token"))
}

func TestBlacklistEntryExpires(t *testing.T) {
	blacklistMu.Lock()
	blacklist["short-lived"] = blacklistEntry{expiresAt: time.Now().Add(-time.Second)}
	blacklistMu.Unlock()

	require.False(t, IsTokenBlacklisted("short-lived"))

	// The expired entry was reaped on lookup.
	blacklistMu.RLock()
	_, ok := blacklist["short-lived"]
	blacklistMu.RUnlock()
	require.False(t, ok)
}
