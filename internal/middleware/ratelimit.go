package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// ClientLimiter keeps one token bucket per client IP.
type ClientLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewClientLimiter allows limit events per second per client, up to burst at once.
func NewClientLimiter(limit rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   burst,
	}
}

// PerMinute allows n requests per minute per client with a burst of n/10 (at least 1).
func PerMinute(n int) *ClientLimiter {
	burst := n / 10
	if burst < 1 {
		burst = 1
	}
	return NewClientLimiter(rate.Limit(float64(n)/60.0), burst)
}

func (l *ClientLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[ip]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[ip] = b
	}
	return b
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware answers 429 once the client's bucket is empty.
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.bucket(clientIP(r)).Allow() {
			jsonError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
