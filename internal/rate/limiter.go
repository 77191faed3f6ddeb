package rate

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter *rate.Limiter
	last    time.Time
}

// LimiterMap holds one token bucket per client, evicting clients idle for longer than ttl.
type LimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*entry
	every    rate.Limit
	burst    int
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLimiterMap allows rpm requests per minute per client with the given burst and starts
// the reaper goroutine. Call Stop when done.
func NewLimiterMap(rpm, burst int, ttl time.Duration) *LimiterMap {
	if rpm <= 0 {
		rpm = 1
	}
	if burst <= 0 {
		burst = 1
	}
	lm := &LimiterMap{
		limiters: make(map[string]*entry),
		every:    rate.Every(time.Minute / time.Duration(rpm)),
		burst:    burst,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go lm.reaper()
	return lm
}

func (l *LimiterMap) reaper() {
	t := time.NewTicker(l.ttl)
	defer t.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case now := <-t.C:
			l.evictIdle(now)
		}
	}
}

func (l *LimiterMap) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for client, e := range l.limiters {
		if now.Sub(e.last) > l.ttl {
			delete(l.limiters, client)
		}
	}
}

// Stop ends the reaper. Safe to call more than once.
func (l *LimiterMap) Stop() { l.stopOnce.Do(func() { close(l.stopCh) }) }

// Allow reports whether a request from client may proceed now.
func (l *LimiterMap) Allow(client string) bool {
	l.mu.Lock()
	e, ok := l.limiters[client]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[client] = e
	}
	e.last = time.Now()
	l.mu.Unlock()
	return e.limiter.Allow()
}

// Len returns the number of tracked clients.
func (l *LimiterMap) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// ClientIP extracts the client IP, preferring the first X-Forwarded-For hop.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
