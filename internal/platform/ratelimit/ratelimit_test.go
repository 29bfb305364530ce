// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

/*
newTestLimiter builds a PerKey with an effectively-zero refill rate so the
burst is the only budget, keeping the assertions time-independent.
*/
func newTestLimiter(t *testing.T, burst int) *PerKey {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return NewPerKey(ctx, rate.Limit(1e-9), burst, time.Hour, time.Hour)
}

func TestPerKey_BurstThenDeny(t *testing.T) {
	limiter := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow("203.0.113.7"), "event %d should fit the burst", i)
	}

	require.False(t, limiter.Allow("203.0.113.7"), "burst exhausted, event should be denied")
}

func TestPerKey_KeysAreIndependent(t *testing.T) {
	limiter := newTestLimiter(t, 1)

	require.True(t, limiter.Allow("alice"))
	require.False(t, limiter.Allow("alice"))

	// Alice exhausting her bucket must not spend Bob's budget.
	require.True(t, limiter.Allow("bob"))
}

func TestPerKey_SweepDropsIdleBuckets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	limiter := NewPerKey(ctx, rate.Limit(1e-9), 1, time.Nanosecond, time.Hour)

	require.True(t, limiter.Allow("churny-ip"))
	require.False(t, limiter.Allow("churny-ip"))

	// Idle longer than the TTL, so the janitor forgets the bucket and the
	// key starts over with a fresh burst.
	time.Sleep(time.Millisecond)
	limiter.sweep()

	require.True(t, limiter.Allow("churny-ip"))
}

func TestEvery_NPerInterval(t *testing.T) {
	// 5 events per hour is one token every 12 minutes.
	require.Equal(t, rate.Every(12*time.Minute), Every(time.Hour, 5))
}
