package logger

import "sync"

var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	global  *Logger
	loggers map[string]*Logger
}

// SetGlobalLogger replaces the logger that unregistered names derive from.
func SetGlobalLogger(l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.global = l
}

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	registry.mu.RLock()
	l := registry.global
	registry.mu.RUnlock()
	if l != nil {
		return l
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if registry.global == nil {
		registry.global = NewDefault("")
	}
	return registry.global
}

// Register stores a named logger in the registry.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get retrieves a named logger. Unregistered names get the global logger
// tagged with the requested component name.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}
