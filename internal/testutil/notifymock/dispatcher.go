// Package notifymock holds test doubles for the notify package. It lives
// apart from testutil so notify's own tests can import testutil.
package notifymock

import (
	"context"
	"sync"
	"wxhm/internal/models"
	"wxhm/internal/notify"
)

// MockDispatcher implements notify.DispatcherInterface and records events.
type MockDispatcher struct {
	mu      sync.Mutex
	Events  []models.NotificationEvent
	TestIDs []int64
	TestErr error
	Started bool
	Stopped bool
}

func (m *MockDispatcher) Enqueue(ev models.NotificationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
}

func (m *MockDispatcher) SendTest(_ context.Context, configID int64) (*notify.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TestIDs = append(m.TestIDs, configID)
	if m.TestErr != nil {
		return nil, m.TestErr
	}
	return &notify.SendResult{MsgID: 1000 + configID}, nil
}

func (m *MockDispatcher) Start() {
	m.mu.Lock()
	m.Started = true
	m.mu.Unlock()
}

func (m *MockDispatcher) Stop() {
	m.mu.Lock()
	m.Stopped = true
	m.mu.Unlock()
}

func (m *MockDispatcher) QueueLen() int { return 0 }

func (m *MockDispatcher) Stats() notify.DispatcherStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return notify.DispatcherStats{Enqueued: int64(len(m.Events))}
}

// Recorded returns a copy of the enqueued events.
func (m *MockDispatcher) Recorded() []models.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.NotificationEvent(nil), m.Events...)
}

// Actions returns the action labels of the enqueued events in order.
func (m *MockDispatcher) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Action)
	}
	return out
}
