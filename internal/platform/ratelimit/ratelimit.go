// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

/*
Package ratelimit provides a per-key token-bucket limiter service.

It is an injected capability, not a process-wide singleton: the HTTP layer
uses one instance keyed by client IP, and the share-link service uses another
keyed by user ID. Swapping either for a distributed limiter only requires a
new [Limiter] implementation — the auth core never sees the difference.
*/
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is the capability consumed by services that need throttling.
type Limiter interface {
	// Allow reports whether the event identified by key may proceed now.
	Allow(key string) bool
}

// PerKey is an in-memory [Limiter] maintaining one token bucket per key.
//
// # Concurrency
//
// Safe for concurrent use. Idle buckets are reaped by a background janitor
// so the map does not grow without bound under churny keys (IPs).
type PerKey struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	limit rate.Limit
	burst int
	ttl   time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewPerKey creates a limiter allowing 'limit' events per second with the
// given burst, and starts a janitor that drops buckets idle longer than ttl.
// The janitor stops when ctx is cancelled.
func NewPerKey(ctx context.Context, limit rate.Limit, burst int, ttl, cleanupEvery time.Duration) *PerKey {
	perKey := &PerKey{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
	}

	go func() {
		ticker := time.NewTicker(cleanupEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				perKey.sweep()
			case <-ctx.Done():
				// Stop the goroutine when the application shuts down
				return
			}
		}
	}()

	return perKey
}

// Allow reports whether the event identified by key may proceed now.
func (p *PerKey) Allow(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, found := p.buckets[key]
	if !found {
		entry = &bucket{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.buckets[key] = entry
	}

	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// sweep removes buckets that have been idle longer than the TTL.
func (p *PerKey) sweep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, entry := range p.buckets {
		if time.Since(entry.lastSeen) > p.ttl {
			delete(p.buckets, key)
		}
	}
}

// Every is a convenience wrapper around [rate.Every] for callers expressing
// limits as "n events per interval" (e.g. 5 share links per hour).
func Every(interval time.Duration, n int) rate.Limit {
	return rate.Every(interval / time.Duration(n))
}
