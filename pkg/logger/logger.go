package logger

import (
	"sync"
	"sync/atomic"
)

// Backend receives every record dispatched through the package-level functions.
type Backend interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger fans a log call out to all attached backends.
type Logger struct {
	mu       sync.RWMutex
	backends []Backend
}

var current atomic.Pointer[Logger]

// Init replaces the global logger with one that writes to the given backends.
// Calls made before Init are dropped.
func Init(backends ...Backend) {
	current.Store(&Logger{backends: backends})
}

// Attach adds a backend to the global logger, creating it if Init was never called.
// The returned func detaches the backend again.
func Attach(b Backend) func() {
	l := current.Load()
	if l == nil {
		current.CompareAndSwap(nil, &Logger{})
		l = current.Load()
	}

	l.mu.Lock()
	l.backends = append(l.backends, b)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, existing := range l.backends {
			if existing == b {
				l.backends = append(l.backends[:i], l.backends[i+1:]...)
				return
			}
		}
	}
}

func dispatch(fn func(Backend)) {
	l := current.Load()
	if l == nil {
		return
	}

	l.mu.RLock()
	backends := make([]Backend, len(l.backends))
	copy(backends, l.backends)
	l.mu.RUnlock()

	for _, b := range backends {
		fn(b)
	}
}

// Log writes a message without a level.
func Log(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Log(message, keyvals...) })
}

func Debug(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Debug(message, keyvals...) })
}

func Info(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Info(message, keyvals...) })
}

func Warn(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Warn(message, keyvals...) })
}

func Error(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Error(message, keyvals...) })
}

// Fatal writes the message to every backend. The console backend exits the process.
func Fatal(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Fatal(message, keyvals...) })
}
