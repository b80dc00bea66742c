package mocks

import "sync"

// MockMetrics is a mock implementation of metrics recorder for testing
type MockMetrics struct {
	mu sync.Mutex

	AccountLockoutCalls int
	RegistrationCalls   int
	LoginAttempts       map[string]int
	TokenRefreshes      map[string]int
	ResetCodesIssued    int
	PasswordResets      map[string]int
	SubmittedAnswers    int
	Reconciliations     map[string]int
	Detached            int64
	Attached            int64
	SupplierUpserts     map[string]int
	CacheHits           int
	CacheMisses         int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		LoginAttempts:   map[string]int{},
		TokenRefreshes:  map[string]int{},
		PasswordResets:  map[string]int{},
		Reconciliations: map[string]int{},
		SupplierUpserts: map[string]int{},
	}
}

func (m *MockMetrics) RecordAccountLockout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AccountLockoutCalls++
}

func (m *MockMetrics) RecordRegistration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegistrationCalls++
}

func (m *MockMetrics) RecordLoginAttempt(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginAttempts[status]++
}

func (m *MockMetrics) RecordTokenRefresh(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TokenRefreshes[status]++
}

func (m *MockMetrics) RecordResetCodeIssued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetCodesIssued++
}

func (m *MockMetrics) RecordPasswordReset(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PasswordResets[result]++
}

func (m *MockMetrics) RecordSubmittedAnswers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmittedAnswers += n
}

func (m *MockMetrics) RecordReconciliation(result string, detached, attached int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reconciliations[result]++
	m.Detached += detached
	m.Attached += attached
}

func (m *MockMetrics) RecordSupplierUpsert(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SupplierUpserts[outcome]++
}

func (m *MockMetrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
}
