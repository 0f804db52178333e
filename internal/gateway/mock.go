package gateway

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider records refund calls for tests. Repeated calls with the same
// idempotency key return the original refund without creating a new one,
// matching provider behavior.
type MockProvider struct {
	mu      sync.Mutex
	Refunds []RefundParams
	byKey   map[string]*Refund

	// Err, when set, is returned by every call.
	Err error
}

func NewMockProvider() *MockProvider {
	return &MockProvider{byKey: make(map[string]*Refund)}
}

func (m *MockProvider) RefundByAmount(_ context.Context, params RefundParams) (*Refund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if params.IdempotencyKey != "" {
		if r, ok := m.byKey[params.IdempotencyKey]; ok {
			return r, nil
		}
	}

	m.Refunds = append(m.Refunds, params)
	r := &Refund{ID: fmt.Sprintf("re_mock_%d", len(m.Refunds)), Status: "succeeded"}
	if params.IdempotencyKey != "" {
		m.byKey[params.IdempotencyKey] = r
	}
	return r, nil
}
