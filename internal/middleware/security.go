package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gul251/nutrimate-backend/pkg/clientip"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		next.ServeHTTP(w, r)
	})
}

// --- AI route rate limiting (per-IP, in-memory token bucket) ---
//
// AI requests hit a metered vendor API, so they get a tighter limit than
// the Redis-backed global one: 6/min with burst 3.

const (
	aiRateLimitRPS    = 0.1
	aiRateLimitBurst  = 3
	aiCleanupInterval = 5 * time.Minute
	aiLimiterTTL      = 30 * time.Minute
)

type aiLimiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

var (
	aiEntries    = make(map[string]*aiLimiterEntry)
	aiEntriesMu  sync.Mutex
	aiCleanupRun bool
)

func getAILimiter(ip string) *rate.Limiter {
	aiEntriesMu.Lock()
	defer aiEntriesMu.Unlock()
	startAICleanupOnce()

	e, ok := aiEntries[ip]
	if !ok {
		e = &aiLimiterEntry{
			limiter: rate.NewLimiter(rate.Limit(aiRateLimitRPS), aiRateLimitBurst),
			lastUse: time.Now(),
		}
		aiEntries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startAICleanupOnce() {
	if aiCleanupRun {
		return
	}
	aiCleanupRun = true
	go func() {
		ticker := time.NewTicker(aiCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			aiEntriesMu.Lock()
			now := time.Now()
			for k, e := range aiEntries {
				if now.Sub(e.lastUse) > aiLimiterTTL {
					delete(aiEntries, k)
				}
			}
			aiEntriesMu.Unlock()
		}
	}()
}

// AIRateLimit applies the tighter limit to /api/ai/ routes only.
func AIRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/ai/") {
			next.ServeHTTP(w, r)
			return
		}

		limiter := getAILimiter(clientip.RealClientIP(r))
		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many AI requests. Please wait a moment and try again."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
