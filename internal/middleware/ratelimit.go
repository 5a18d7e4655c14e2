package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	count int
	start time.Time
}

// IPLimiter caps requests per client IP over a fixed window.
type IPLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
}

func NewIPLimiter(limit int, period time.Duration) *IPLimiter {
	l := &IPLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
	go l.evictLoop()
	return l
}

func (l *IPLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	w, ok := l.clients[ip]
	if !ok || now.Sub(w.start) >= l.period {
		l.clients[ip] = &window{count: 1, start: now}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

func (l *IPLimiter) evictLoop() {
	tick := time.NewTicker(l.period)
	for range tick.C {
		l.mu.Lock()
		cutoff := time.Now().Add(-l.period)
		for ip, w := range l.clients {
			if w.start.Before(cutoff) {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit rejects requests over the per-IP cap with 429.
func RateLimit(limiter *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
