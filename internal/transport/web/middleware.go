package web

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/logging"
	"github.com/Walehamdi1/QNA/internal/metrics"
	"github.com/Walehamdi1/QNA/internal/service/auth"
)

const (
	bearerPrefix    = "Bearer "
	RequestIDHeader = "X-Request-ID"
)

// TokenValidator parses access tokens / Analyse les tokens d'accès
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.CustomClaims, error)
}

// RequestID generates unique request ID / Génère un ID unique pour la requête
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), requestID)))
	})
}

// GetRequestID extracts request ID from context / Extrait l'ID de la requête du contexte
func GetRequestID(ctx context.Context) string {
	return logging.RequestID(ctx)
}

// statusRecorder captures the status written downstream / Capture le statut écrit en aval
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging logs HTTP requests and rejects tokens in URLs / Journalise les requêtes et refuse les tokens dans l'URL
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if strings.Contains(r.URL.RawQuery, "access_token=") || strings.Contains(r.URL.RawQuery, "refresh_token=") {
			slog.WarnContext(r.Context(), "token in query string rejected", "path", r.URL.Path, "ip", r.RemoteAddr)
			ErrorResponse(w, "Tokens must not be sent in the URL", http.StatusBadRequest)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Recover turns handler panics into 500 / Convertit les paniques des handlers en 500
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				slog.ErrorContext(r.Context(), "panic in handler", "panic", p, "stack", string(debug.Stack()))
				ErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Timeout bounds each request / Limite la durée de chaque requête
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.TimeoutHandler(next, d, `{"error":"request timeout"}`)
	}
}

// Middleware holds middleware configuration and dependencies / Contient la configuration middleware
type Middleware struct {
	conf          *config.Config
	globalLimiter *IPRateLimiter
	strictLimiter *IPRateLimiter
	userLimiter   *IPRateLimiter
	metrics       *metrics.Metrics
	tokens        TokenValidator
}

// NewMiddleware creates middleware with rate limiters / Crée le middleware avec limiteurs
func NewMiddleware(ctx context.Context, conf *config.Config, m *metrics.Metrics, tokens TokenValidator) *Middleware {
	mw := &Middleware{
		conf:    conf,
		metrics: m,
		tokens:  tokens,
	}

	if conf.RateLimiter.Enabled {
		mw.globalLimiter = NewIPRateLimiter(ctx, conf.RateLimiter.RPS, conf.RateLimiter.Burst)
		mw.strictLimiter = NewIPRateLimiter(ctx, conf.RateLimiter.AuthRPS, conf.RateLimiter.AuthBurst)
		mw.userLimiter = NewIPRateLimiter(ctx, conf.RateLimiter.RPS*2, conf.RateLimiter.Burst*2)
	}

	return mw
}

// Stop ends the limiter cleanup goroutines / Arrête les goroutines de nettoyage
func (m *Middleware) Stop() {
	for _, l := range []*IPRateLimiter{m.globalLimiter, m.strictLimiter, m.userLimiter} {
		if l != nil {
			l.Stop()
		}
	}
}

// MetricsMiddleware tracks HTTP request metrics / Suit les métriques des requêtes HTTP
func (m *Middleware) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.metrics.IncrementActiveConnections()
		defer m.metrics.DecrementActiveConnections()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Route pattern keeps label cardinality bounded
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		m.metrics.RecordHTTPRequest(r.Method, path, rec.status)
		m.metrics.RecordHTTPDuration(r.Method, path, time.Since(start))
	})
}

// Auth validates the Bearer token and stores the principal / Valide le token Bearer et stocke l'appelant
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := r.Header.Get("Authorization")
		if !strings.HasPrefix(authorization, bearerPrefix) {
			ErrorResponse(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.ValidateAccessToken(strings.TrimPrefix(authorization, bearerPrefix))
		if err != nil {
			m.metrics.RecordInvalidToken()
			WriteServiceError(w, r, err)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			m.metrics.RecordInvalidToken()
			slog.WarnContext(r.Context(), "token subject is not a user id", "subject", claims.Subject)
			ErrorResponse(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		principal := domain.Principal{
			UserID: userID,
			Email:  claims.Email,
			Role:   domain.UserRole(claims.Role),
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// RequirePermission checks the caller's role grants permission / Vérifie que le rôle accorde la permission
func (m *Middleware) RequirePermission(permission domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				slog.ErrorContext(r.Context(), "RequirePermission without Auth", "path", r.URL.Path)
				ErrorResponse(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if !domain.RoleHasPermission(principal.Role, permission) {
				m.metrics.RecordPermissionDenial(permission.String())
				slog.WarnContext(r.Context(), "permission denied",
					"user_id", principal.UserID,
					"role", principal.Role,
					"permission", permission,
					"path", r.URL.Path,
				)
				ErrorResponse(w, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Cors handles CORS headers / Gère les en-têtes CORS
func (m *Middleware) Cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range m.conf.Cors.AllowedOrigins {
			if origin != "" && (allowed == "*" || allowed == origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders adds security headers / Ajoute les en-têtes de sécurité
func (m *Middleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if m.conf.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
