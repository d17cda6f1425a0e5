package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DefaultSearchPath is consulted when resolving detected commands.
var DefaultSearchPath = []string{
	"/usr/local/sbin",
	"/usr/local/bin",
	"/usr/sbin",
	"/usr/bin",
	"/sbin",
	"/bin",
}

// ErrNotFound is returned by Get for commands that did not resolve.
var ErrNotFound = errors.New("command not found")

// Commands collects program names requested by plugins and resolves them to
// absolute paths in one pass.
type Commands struct {
	mu    sync.Mutex
	paths map[string]string
}

// NewCommands returns an empty registry.
func NewCommands() *Commands {
	return &Commands{paths: make(map[string]string)}
}

// Detect requests that name be resolved later.
func (c *Commands) Detect(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.paths[name]; !ok {
		c.paths[name] = ""
	}
}

// Set records an explicit path for name.
func (c *Commands) Set(name, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paths[name] = path
}

// Get returns the resolved path for name.
func (c *Commands) Get(name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, ok := c.paths[name]
	if !ok || path == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return path, nil
}

// Has reports whether name resolved.
func (c *Commands) Has(name string) bool {
	_, err := c.Get(name)
	return err == nil
}

// Names returns every requested command in sorted order.
func (c *Commands) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.paths))
	for name := range c.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve looks up every unresolved command in searchPath. Commands that are
// not found stay unresolved.
func (c *Commands) Resolve(searchPath []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, current := range c.paths {
		if current != "" {
			continue
		}
		c.paths[name] = lookPath(name, searchPath)
	}
}

func lookPath(name string, searchPath []string) string {
	if strings.ContainsRune(name, '/') {
		if isExecutable(name) {
			return name
		}
		return ""
	}
	for _, dir := range searchPath {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate
		}
	}
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
