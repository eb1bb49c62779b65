package auth

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	rateLimitWindow  = 1 * time.Minute
	rateLimitMaxFail = 10
)

// rateLimiter tracks failed API key attempts per IP.
type rateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// prune drops attempts outside the window and returns the rest.
// Callers hold rl.mu.
func (rl *rateLimiter) prune(ip string) []time.Time {
	cutoff := rl.now().Add(-rateLimitWindow)
	valid := rl.attempts[ip][:0]
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, ip)
		return nil
	}
	rl.attempts[ip] = valid
	return valid
}

// limited reports whether ip has used up its failed attempts.
func (rl *rateLimiter) limited(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.prune(ip)) >= rateLimitMaxFail
}

// recordFailure records a failed attempt for ip.
func (rl *rateLimiter) recordFailure(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.attempts[ip] = append(rl.prune(ip), rl.now())
}

// Guard holds the API key middleware state.
type Guard struct {
	keys     *APIKeyStore
	required bool
	limiter  *rateLimiter
}

// NewGuard creates a guard. When required is false and no key exists
// yet, the API is open so the first key can be created.
func NewGuard(keys *APIKeyStore, required bool) *Guard {
	return &Guard{keys: keys, required: required, limiter: newRateLimiter()}
}

// Active reports whether requests must carry a key.
func (g *Guard) Active() (bool, error) {
	if g.required {
		return true, nil
	}
	n, err := g.keys.Count()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RequireAPIKey is middleware that validates Bearer token auth for /api/ routes.
// Non-API routes such as /health pass through untouched.
// Returns 401 for missing/invalid keys, 429 for rate-limited IPs.
func (g *Guard) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		active, err := g.Active()
		if err != nil {
			slog.Error("checking api keys", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if !active {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if g.limiter.limited(ip) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		valid, err := g.keys.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			slog.Error("validating api key", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if !valid {
			g.limiter.recordFailure(ip)
			slog.Warn("invalid api key", "ip", ip, "path", r.URL.Path)
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
