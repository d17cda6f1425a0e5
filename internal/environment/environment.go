// Package environment holds the process-lifetime key/value map shared by the
// engine and every plugin.
package environment

import (
	"fmt"
	"sort"
	"sync"
)

// Environment maps namespaced keys to values. Values are bool, string, int,
// []string, or an opaque handle. Last writer wins.
type Environment struct {
	mu     sync.RWMutex
	values map[string]any
}

// New returns an empty Environment.
func New() *Environment {
	return &Environment{values: make(map[string]any)}
}

// Get returns the value for key, or def when key is not set.
func (e *Environment) Get(key string, def any) any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if v, ok := e.values[key]; ok {
		return v
	}
	return def
}

// Lookup returns the value for key and whether it is set.
func (e *Environment) Lookup(key string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.values[key]
	return v, ok
}

// Set stores value under key.
func (e *Environment) Set(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.values[key] = value
}

// SetDefault stores value only when key is not set yet and returns the
// value now held. Calling it again never resets an existing value.
func (e *Environment) SetDefault(key string, value any) any {
	e.mu.Lock()
	defer e.mu.Unlock()

	if current, ok := e.values[key]; ok {
		return current
	}
	e.values[key] = value
	return value
}

// Delete removes key.
func (e *Environment) Delete(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.values, key)
}

// Keys returns all keys in sorted order.
func (e *Environment) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]string, 0, len(e.values))
	for key := range e.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Bool returns the boolean stored under key, or def when unset or not a bool.
func (e *Environment) Bool(key string, def bool) bool {
	if v, ok := e.Get(key, nil).(bool); ok {
		return v
	}
	return def
}

// String returns the string stored under key, or def when unset or not a string.
func (e *Environment) String(key string, def string) string {
	if v, ok := e.Get(key, nil).(string); ok {
		return v
	}
	return def
}

// Int returns the integer stored under key, or def when unset or not an int.
func (e *Environment) Int(key string, def int) int {
	if v, ok := e.Get(key, nil).(int); ok {
		return v
	}
	return def
}

// Strings returns a copy of the string slice stored under key.
func (e *Environment) Strings(key string) []string {
	if v, ok := e.Get(key, nil).([]string); ok {
		return append([]string(nil), v...)
	}
	return nil
}

// MustString returns the string stored under key or an error describing
// why it is unavailable.
func (e *Environment) MustString(key string) (string, error) {
	v, ok := e.Lookup(key)
	if !ok {
		return "", fmt.Errorf("environment key %s is not set", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("environment key %s holds %T, not a string", key, v)
	}
	return s, nil
}
