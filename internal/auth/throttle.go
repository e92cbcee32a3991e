package auth

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"
)

const CooldownCapSeconds = 30

// ThrottleRetention is how long an email's failure count survives after its
// cooldown ends. Failing again inside the window keeps escalating.
const ThrottleRetention = 15 * time.Minute

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := int(math.Pow(2, float64(failCount)))
	if s > CooldownCapSeconds || s <= 0 {
		return CooldownCapSeconds
	}
	return s
}

type throttleEntry struct {
	failCount     int
	cooldownUntil time.Time
}

// LoginThrottle tracks failed logins per email.
type LoginThrottle struct {
	mu        sync.Mutex
	clock     clock.Clock
	entries   map[string]*throttleEntry
	lastSweep time.Time
}

func NewLoginThrottle(clk clock.Clock) *LoginThrottle {
	if clk == nil {
		clk = clock.WallClock
	}
	return &LoginThrottle{clock: clk, entries: make(map[string]*throttleEntry)}
}

func throttleKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// WaitSeconds is how long the caller must wait before trying again, 0 when
// there is no cooldown.
func (t *LoginThrottle) WaitSeconds(email string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := throttleKey(email)
	e, ok := t.entries[key]
	if !ok {
		return 0
	}
	now := t.clock.Now()
	if expired(e, now) {
		delete(t.entries, key)
		return 0
	}
	if now.Before(e.cooldownUntil) {
		return int(math.Ceil(e.cooldownUntil.Sub(now).Seconds()))
	}
	return 0
}

func (t *LoginThrottle) RecordFailure(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	t.sweep(now)
	key := throttleKey(email)
	e, ok := t.entries[key]
	if !ok || expired(e, now) {
		e = &throttleEntry{}
		t.entries[key] = e
	}
	e.failCount++
	e.cooldownUntil = now.Add(time.Duration(CooldownSecondsForFailCount(e.failCount)) * time.Second)
}

func (t *LoginThrottle) RecordSuccess(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, throttleKey(email))
}

// Len reports how many emails are tracked.
func (t *LoginThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func expired(e *throttleEntry, now time.Time) bool {
	return !now.Before(e.cooldownUntil.Add(ThrottleRetention))
}

// sweep drops expired entries, at most once per retention period. Callers
// hold t.mu.
func (t *LoginThrottle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < ThrottleRetention {
		return
	}
	t.lastSweep = now
	for key, e := range t.entries {
		if expired(e, now) {
			delete(t.entries, key)
		}
	}
}
