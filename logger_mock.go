package githubmcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/shaharia-lab/goai/observability"
)

// MockLogger implements observability.Logger for tests. It records messages
// per level; loggers derived via WithFields write into the same store, so a
// test can observe logs emitted through derived loggers.
type MockLogger struct {
	mu      sync.Mutex
	entries map[string][]string
	fields  map[string]interface{}
	root    *MockLogger
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) store() *MockLogger {
	if m.root != nil {
		return m.root
	}
	return m
}

func (m *MockLogger) record(level string, args ...interface{}) {
	s := m.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string][]string)
	}
	s.entries[level] = append(s.entries[level], fmt.Sprint(args...))
}

func (m *MockLogger) recordf(level, format string, args ...interface{}) {
	m.record(level, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Debug(args ...interface{}) { m.record("debug", args...) }
func (m *MockLogger) Info(args ...interface{})  { m.record("info", args...) }
func (m *MockLogger) Warn(args ...interface{})  { m.record("warn", args...) }
func (m *MockLogger) Error(args ...interface{}) { m.record("error", args...) }
func (m *MockLogger) Fatal(args ...interface{}) { m.record("fatal", args...) }
func (m *MockLogger) Panic(args ...interface{}) { m.record("panic", args...) }

func (m *MockLogger) Debugf(format string, args ...interface{}) { m.recordf("debug", format, args...) }
func (m *MockLogger) Infof(format string, args ...interface{})  { m.recordf("info", format, args...) }
func (m *MockLogger) Warnf(format string, args ...interface{})  { m.recordf("warn", format, args...) }
func (m *MockLogger) Errorf(format string, args ...interface{}) { m.recordf("error", format, args...) }
func (m *MockLogger) Fatalf(format string, args ...interface{}) { m.recordf("fatal", format, args...) }
func (m *MockLogger) Panicf(format string, args ...interface{}) { m.recordf("panic", format, args...) }

func (m *MockLogger) WithFields(fields map[string]interface{}) observability.Logger {
	s := m.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make(map[string]interface{}, len(m.fields)+len(fields))
	for k, v := range m.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &MockLogger{fields: merged, root: s}
}

func (m *MockLogger) WithContext(_ context.Context) observability.Logger { return m }

func (m *MockLogger) WithErr(err error) observability.Logger {
	return m.WithFields(map[string]interface{}{observability.ErrorLogField: err})
}

// Logs returns the messages recorded at the given level.
func (m *MockLogger) Logs(level string) []string {
	s := m.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.entries[level]...)
}
