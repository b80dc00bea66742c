package mocks

import (
	"context"
	"sync"

	"github.com/Walehamdi1/QNA/internal/ports"
)

// MockEmailSender captures sent messages instead of delivering them
type MockEmailSender struct {
	mu   sync.Mutex
	Sent []ports.Email
	Err  error // returned by Send when set
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (m *MockEmailSender) Send(_ context.Context, msg ports.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last returns the most recent message, if any
func (m *MockEmailSender) Last() (ports.Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return ports.Email{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}
