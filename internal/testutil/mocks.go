package testutil

import (
	"fmt"
	"sync"
	"time"
	"wxhm/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Messages returns every formatted message logged at level.
func (m *MockLogger) Messages(level string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.Logs {
		if e.Level == level {
			out = append(out, fmt.Sprintf(e.Format, e.Args...))
		}
	}
	return out
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu            sync.Mutex
	Notifications map[string]int
	Evictions     int
	QueueLength   int
	CacheHits     int
	CacheMisses   int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Notifications: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) ObserveDispatchDuration(_ time.Duration)          {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	m.CacheHits++
	m.mu.Unlock()
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	m.CacheMisses++
	m.mu.Unlock()
}
func (m *MockMetrics) IncNotifications(result string) {
	m.mu.Lock()
	m.Notifications[result]++
	m.mu.Unlock()
}
func (m *MockMetrics) SetQueueLength(n int) {
	m.mu.Lock()
	m.QueueLength = n
	m.mu.Unlock()
}
func (m *MockMetrics) AddEvictions(n int) {
	m.mu.Lock()
	m.Evictions += n
	m.mu.Unlock()
}

func (m *MockMetrics) NotificationCount(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Notifications[result]
}

// MockCache implements providers.CacheProviderInterface over a map and
// remembers the TTL of every SetTTL call.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	TTLs map[string]time.Duration
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte), TTLs: make(map[string]time.Duration)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Data[key]
	return v, ok
}
func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	m.Data[key] = value
	m.mu.Unlock()
}
func (m *MockCache) SetTTL(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	m.Data[key] = value
	m.TTLs[key] = ttl
	m.mu.Unlock()
}
func (m *MockCache) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TTLs[key]
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	delete(m.Data, key)
	m.mu.Unlock()
}
