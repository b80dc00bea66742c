package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorIdleTTL         = 3 * time.Minute
	visitorCleanupInterval = 5 * time.Minute
	retryAfterSeconds      = 60
)

// IPRateLimiter keeps one token bucket per visitor key / Un seau de jetons par visiteur
type IPRateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	cancel   context.CancelFunc
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter starts a limiter whose cleanup stops with ctx / Démarre un limiteur arrêté avec ctx
func NewIPRateLimiter(ctx context.Context, rps float64, burst int) *IPRateLimiter {
	cleanupCtx, cancel := context.WithCancel(ctx)

	rl := &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
		cancel:   cancel,
	}

	go rl.cleanupVisitors(cleanupCtx)
	return rl
}

// Stop ends the cleanup goroutine.
func (rl *IPRateLimiter) Stop() {
	rl.cancel()
}

// Allow consumes one token for key / Consomme un jeton pour key
func (rl *IPRateLimiter) Allow(key string) bool {
	return rl.getVisitor(key).Allow()
}

func (rl *IPRateLimiter) getVisitor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *IPRateLimiter) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(visitorCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.prune(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

// prune drops visitors idle longer than visitorIdleTTL / Supprime les visiteurs inactifs
func (rl *IPRateLimiter) prune(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

func (rl *IPRateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// getIPWithTrustedProxies returns the client IP, trusting proxy headers only from trustedProxies
func getIPWithTrustedProxies(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	if !slices.Contains(trustedProxies, remoteIP) {
		return remoteIP
	}

	// X-Forwarded-For is "client, proxy1, proxy2"
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		clientIP := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if net.ParseIP(clientIP) != nil {
			return clientIP
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(realIP) != nil {
		return realIP
	}

	return remoteIP
}

// hashIP keeps raw addresses out of memory and logs / Évite de conserver les IP brutes
func hashIP(ip string) string {
	h := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(h[:])
}

func (mw *Middleware) limit(l *IPRateLimiter, scope string, key func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mw.conf.RateLimiter.Enabled || l == nil {
				next.ServeHTTP(w, r)
				return
			}

			if !l.Allow(key(r)) {
				mw.metrics.RecordRateLimitHit(scope)
				sendRateLimitError(w, "Too many requests. Please try again later.", retryAfterSeconds)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (mw *Middleware) ipKey(r *http.Request) string {
	return hashIP(getIPWithTrustedProxies(r, mw.conf.Security.TrustedProxies))
}

// RateLimit applies the global per-IP bucket / Applique la limite globale par IP
func (mw *Middleware) RateLimit(next http.Handler) http.Handler {
	return mw.limit(mw.globalLimiter, "global", mw.ipKey)(next)
}

// RateLimitStrict applies the login and reset bucket / Applique la limite des routes de connexion et de réinitialisation
func (mw *Middleware) RateLimitStrict(next http.Handler) http.Handler {
	return mw.limit(mw.strictLimiter, "strict", mw.ipKey)(next)
}

// RateLimitByUser applies rate limit per user / Applique une limite de taux par utilisateur
func (mw *Middleware) RateLimitByUser(next http.Handler) http.Handler {
	return mw.limit(mw.userLimiter, "user", func(r *http.Request) string {
		if p, ok := PrincipalFromContext(r.Context()); ok {
			return fmt.Sprintf("user_%d", p.UserID)
		}
		return mw.ipKey(r)
	})(next)
}

// RateLimitErrorResponse is the 429 body / Corps de la réponse 429
type RateLimitErrorResponse struct {
	Error      string    `json:"error"`
	Message    string    `json:"message"`
	Code       int       `json:"code"`
	RetryAfter int       `json:"retry_after_seconds"`
	Timestamp  time.Time `json:"timestamp"`
}

func sendRateLimitError(w http.ResponseWriter, message string, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(RateLimitErrorResponse{
		Error:      "rate_limit_exceeded",
		Message:    message,
		Code:       http.StatusTooManyRequests,
		RetryAfter: retryAfter,
		Timestamp:  time.Now().UTC(),
	})
}
