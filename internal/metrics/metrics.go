package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metric collectors / Contient tous les collecteurs de métriques Prometheus
type Metrics struct {
	// Authentication metrics
	LoginAttempts     *prometheus.CounterVec // Login attempts by status (success/failure/locked/disabled)
	RegistrationTotal prometheus.Counter
	TokenRefreshes    *prometheus.CounterVec // Token refresh operations by status
	AccountLockouts   prometheus.Counter

	// Password reset metrics
	ResetCodesIssued prometheus.Counter
	PasswordResets   *prometheus.CounterVec // Reset attempts by result (success/invalid/expired)

	// Survey metrics
	SubmittedAnswers  prometheus.Counter
	Reconciliations   *prometheus.CounterVec // Membership reconciliations by result (success/missing/error)
	QuestionsDetached prometheus.Counter
	QuestionsAttached prometheus.Counter
	SupplierUpserts   *prometheus.CounterVec // Supplier comment upserts by outcome (created/updated/failed)
	FormCacheLookups  *prometheus.CounterVec // Form cache lookups by result (hit/miss)

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ActiveConnections   prometheus.Gauge

	// Security metrics
	RateLimitHits     *prometheus.CounterVec
	InvalidTokens     prometheus.Counter
	PermissionDenials *prometheus.CounterVec

	// System metrics
	DatabaseConnections prometheus.Gauge
	BackgroundTasks     *prometheus.GaugeVec // 1=running, 0=stopped
}

// NewMetrics initializes Metrics instance / Initialise une instance Metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_attempts_total",
				Help: "Total number of login attempts by status (success, failure, locked, disabled)",
			},
			[]string{"status"},
		),
		RegistrationTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_registrations_total",
				Help: "Total number of user registrations",
			},
		),
		TokenRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_token_refreshes_total",
				Help: "Total number of token refresh operations by status",
			},
			[]string{"status"},
		),
		AccountLockouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_account_lockouts_total",
				Help: "Total number of account lockouts due to failed login attempts",
			},
		),

		ResetCodesIssued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "password_reset_codes_issued_total",
				Help: "Total number of password reset codes issued",
			},
		),
		PasswordResets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "password_resets_total",
				Help: "Total number of password reset attempts by result",
			},
			[]string{"result"},
		),

		SubmittedAnswers: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "survey_submitted_answers_total",
				Help: "Total number of client answers written by submissions",
			},
		),
		Reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_reconciliations_total",
				Help: "Total number of form membership reconciliations by result",
			},
			[]string{"result"},
		),
		QuestionsDetached: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "survey_questions_detached_total",
				Help: "Total number of questions detached from a form by reconciliation",
			},
		),
		QuestionsAttached: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "survey_questions_attached_total",
				Help: "Total number of questions attached to a form by reconciliation",
			},
		),
		SupplierUpserts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_supplier_upserts_total",
				Help: "Total number of supplier comment upserts by outcome",
			},
			[]string{"outcome"},
		),
		FormCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_form_cache_lookups_total",
				Help: "Total number of form cache lookups by result (hit, miss)",
			},
			[]string{"result"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status code",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				// 10ms to 10s
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Current number of in-flight HTTP requests",
			},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "security_rate_limit_hits_total",
				Help: "Total number of rate limit violations by endpoint",
			},
			[]string{"endpoint"},
		),
		InvalidTokens: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "security_invalid_tokens_total",
				Help: "Total number of invalid or expired JWT token attempts",
			},
		),
		PermissionDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "security_permission_denials_total",
				Help: "Total number of permission check failures by permission type",
			},
			[]string{"permission"},
		),

		DatabaseConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "database_connections_open",
				Help: "Current number of open database connections",
			},
		),
		BackgroundTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "background_tasks_status",
				Help: "Status of background tasks (1=running, 0=stopped)",
			},
			[]string{"task_name"},
		),
	}
}

// RecordLoginAttempt records a login attempt.
// Status can be: "success", "failure", "locked", or "disabled"
func (m *Metrics) RecordLoginAttempt(status string) {
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// RecordRegistration increments the registration counter.
func (m *Metrics) RecordRegistration() {
	m.RegistrationTotal.Inc()
}

// RecordTokenRefresh records a token refresh operation.
// Status can be: "success", "invalid", "expired", or "binding_failure"
func (m *Metrics) RecordTokenRefresh(status string) {
	m.TokenRefreshes.WithLabelValues(status).Inc()
}

// RecordAccountLockout increments the account lockout counter.
func (m *Metrics) RecordAccountLockout() {
	m.AccountLockouts.Inc()
}

// RecordResetCodeIssued increments the issued reset codes counter.
func (m *Metrics) RecordResetCodeIssued() {
	m.ResetCodesIssued.Inc()
}

// RecordPasswordReset records a reset attempt: "success", "invalid" or "expired".
func (m *Metrics) RecordPasswordReset(result string) {
	m.PasswordResets.WithLabelValues(result).Inc()
}

// RecordSubmittedAnswers adds n written answers / Ajoute n réponses écrites
func (m *Metrics) RecordSubmittedAnswers(n int) {
	m.SubmittedAnswers.Add(float64(n))
}

// RecordReconciliation records one reconciliation run with its moves.
func (m *Metrics) RecordReconciliation(result string, detached, attached int64) {
	m.Reconciliations.WithLabelValues(result).Inc()
	m.QuestionsDetached.Add(float64(detached))
	m.QuestionsAttached.Add(float64(attached))
}

// RecordSupplierUpsert records an upsert outcome: "created", "updated" or "failed".
func (m *Metrics) RecordSupplierUpsert(outcome string) {
	m.SupplierUpserts.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup records a form cache hit or miss / Enregistre un hit ou miss du cache
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.FormCacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request with method, path, and status code.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(statusCode)).Inc()
}

// RecordHTTPDuration records the duration of an HTTP request.
func (m *Metrics) RecordHTTPDuration(method, path string, duration time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementActiveConnections increments the in-flight gauge.
func (m *Metrics) IncrementActiveConnections() {
	m.ActiveConnections.Inc()
}

// DecrementActiveConnections decrements the in-flight gauge.
func (m *Metrics) DecrementActiveConnections() {
	m.ActiveConnections.Dec()
}

// RecordRateLimitHit records a rate limit violation for a specific endpoint.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordInvalidToken increments the invalid token counter.
func (m *Metrics) RecordInvalidToken() {
	m.InvalidTokens.Inc()
}

// RecordPermissionDenial increments permission denial counter / Incrémente le compteur de refus de permission
func (m *Metrics) RecordPermissionDenial(permission string) {
	m.PermissionDenials.WithLabelValues(permission).Inc()
}

// UpdateDatabaseConnections updates the database connections gauge.
func (m *Metrics) UpdateDatabaseConnections(count int) {
	m.DatabaseConnections.Set(float64(count))
}

// SetBackgroundTaskStatus sets the status of a background task.
func (m *Metrics) SetBackgroundTaskStatus(taskName string, running bool) {
	status := 0.0
	if running {
		status = 1.0
	}
	m.BackgroundTasks.WithLabelValues(taskName).Set(status)
}

// statusCodeToString keeps label cardinality bounded / Limite la cardinalité des labels
func statusCodeToString(code int) string {
	switch code {
	case 200, 201, 204, 400, 401, 403, 404, 409, 429, 500, 503:
		return strconv.Itoa(code)
	}
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	}
	return "unknown"
}
