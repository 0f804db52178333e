package notify

import (
	"context"
	"sync"
)

// PublishedEvent is one recorded Publish call.
type PublishedEvent struct {
	Subject string
	Payload any
}

// MockPublisher records published events for tests.
type MockPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, subject string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, PublishedEvent{Subject: subject, Payload: payload})
	return nil
}

func (m *MockPublisher) Close() {}

// Subjects returns the subjects of all recorded events, in publish order.
func (m *MockPublisher) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Subject
	}
	return out
}
