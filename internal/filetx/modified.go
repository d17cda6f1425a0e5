package filetx

import "sync"

// ModifiedList collects the paths of files changed by committed transactions.
type ModifiedList struct {
	mu    sync.Mutex
	paths []string
}

// NewModifiedList returns an empty collector.
func NewModifiedList() *ModifiedList {
	return &ModifiedList{}
}

// Add records path once.
func (m *ModifiedList) Add(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.paths {
		if existing == path {
			return
		}
	}
	m.paths = append(m.paths, path)
}

// Paths returns the recorded paths in insertion order.
func (m *ModifiedList) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.paths...)
}

// Len returns the number of recorded paths.
func (m *ModifiedList) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.paths)
}
