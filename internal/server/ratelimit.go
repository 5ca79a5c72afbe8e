package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter tracks per-client request rates and daily upload quotas.
// A zero limit disables that check.
type RateLimiter struct {
	mu sync.Mutex

	perMinute   int
	perHour     int
	perDay      int
	bytesPerDay int64

	clients map[string]*clientUsage
	now     func() time.Time
}

type clientUsage struct {
	minuteStart time.Time
	minuteCount int
	hourStart   time.Time
	hourCount   int
	day         time.Time
	dayCount    int
	dayBytes    int64
}

// NewRateLimiter creates a limiter with the given limits.
func NewRateLimiter(perMinute, perHour, perDay int, bytesPerDay int64) *RateLimiter {
	return &RateLimiter{
		perMinute:   perMinute,
		perHour:     perHour,
		perDay:      perDay,
		bytesPerDay: bytesPerDay,
		clients:     make(map[string]*clientUsage),
		now:         time.Now,
	}
}

// CheckRateLimit records a request of size bytes from client, or returns a
// *RateLimitError or *QuotaExceededError without recording it.
func (rl *RateLimiter) CheckRateLimit(client string, size int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	u := rl.usage(client, now)

	if rl.perMinute > 0 && u.minuteCount >= rl.perMinute {
		return &RateLimitError{Type: "minute", Limit: rl.perMinute, RetryAfter: u.minuteStart.Add(time.Minute).Sub(now)}
	}
	if rl.perHour > 0 && u.hourCount >= rl.perHour {
		return &RateLimitError{Type: "hour", Limit: rl.perHour, RetryAfter: u.hourStart.Add(time.Hour).Sub(now)}
	}

	resets := u.day.AddDate(0, 0, 1)
	if rl.perDay > 0 && u.dayCount >= rl.perDay {
		return &QuotaExceededError{Type: "requests", Limit: int64(rl.perDay), Used: int64(u.dayCount), Resets: resets}
	}
	if rl.bytesPerDay > 0 && u.dayBytes+size > rl.bytesPerDay {
		return &QuotaExceededError{Type: "data", Limit: rl.bytesPerDay, Used: u.dayBytes, Resets: resets}
	}

	u.minuteCount++
	u.hourCount++
	u.dayCount++
	u.dayBytes += size
	return nil
}

// usage returns the client's counters with expired windows reset.
func (rl *RateLimiter) usage(client string, now time.Time) *clientUsage {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	u, ok := rl.clients[client]
	if !ok {
		u = &clientUsage{minuteStart: now, hourStart: now, day: today}
		rl.clients[client] = u
		return u
	}

	if now.Sub(u.minuteStart) >= time.Minute {
		u.minuteStart, u.minuteCount = now, 0
	}
	if now.Sub(u.hourStart) >= time.Hour {
		u.hourStart, u.hourCount = now, 0
	}
	if !u.day.Equal(today) {
		u.day, u.dayCount, u.dayBytes = today, 0, 0
	}
	return u
}

// Usage returns the requests and bytes recorded for client today.
func (rl *RateLimiter) Usage(client string) (requests int, bytes int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if u, ok := rl.clients[client]; ok {
		return u.dayCount, u.dayBytes
	}
	return 0, 0
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string // "minute" or "hour"
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter.Round(time.Second))
}

// QuotaExceededError represents a daily quota violation.
type QuotaExceededError struct {
	Type   string // "requests" or "data"
	Limit  int64
	Used   int64
	Resets time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
