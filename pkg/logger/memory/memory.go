// Package memory provides a logger backend that keeps records in memory.
// Tests attach it to observe what the statistics engines reported.
package memory

import (
	"fmt"
	"sync"
)

type Level string

const (
	LevelNone  Level = "none"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Entry is one recorded log call.
type Entry struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// MemoryLogger records every call. It never exits, even on Fatal.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (m *MemoryLogger) record(level Level, message string, keyvals []any) {
	fields := make(map[string]any, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fields[fmt.Sprint(keyvals[i])] = keyvals[i+1]
	}
	if len(keyvals)%2 == 1 {
		fields["!BADKEY"] = keyvals[len(keyvals)-1]
	}

	m.mu.Lock()
	m.entries = append(m.entries, Entry{Level: level, Message: message, Fields: fields})
	m.mu.Unlock()
}

func (m *MemoryLogger) Log(message string, keyvals ...any)   { m.record(LevelNone, message, keyvals) }
func (m *MemoryLogger) Debug(message string, keyvals ...any) { m.record(LevelDebug, message, keyvals) }
func (m *MemoryLogger) Info(message string, keyvals ...any)  { m.record(LevelInfo, message, keyvals) }
func (m *MemoryLogger) Warn(message string, keyvals ...any)  { m.record(LevelWarn, message, keyvals) }
func (m *MemoryLogger) Error(message string, keyvals ...any) { m.record(LevelError, message, keyvals) }
func (m *MemoryLogger) Fatal(message string, keyvals ...any) { m.record(LevelFatal, message, keyvals) }

// Entries returns a copy of everything recorded so far.
func (m *MemoryLogger) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Filter returns the recorded entries at the given level.
func (m *MemoryLogger) Filter(level Level) []Entry {
	var out []Entry
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
