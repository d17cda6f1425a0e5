package logger

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Redacted replaces filtered content in log output.
const Redacted = "**FILTERED**"

// PrivateKeyPattern hides the body of PEM encoded private keys.
var PrivateKeyPattern = regexp.MustCompile(`(?s)BEGIN[A-Z ]* PRIVATE KEY(?P<filter>.*?)END[A-Z ]* PRIVATE KEY`)

// Redactor is an io.Writer that masks secrets before forwarding output.
// Secrets are literal tokens, tokens produced on demand by sources, and the
// "filter" capture group of registered patterns.
type Redactor struct {
	mu       sync.RWMutex
	out      io.Writer
	tokens   []string
	sources  []func() []string
	patterns []*regexp.Regexp
}

// NewRedactor wraps out. The private key pattern is registered by default.
func NewRedactor(out io.Writer) *Redactor {
	return &Redactor{
		out:      out,
		patterns: []*regexp.Regexp{PrivateKeyPattern},
	}
}

// AddToken masks every future occurrence of token.
func (r *Redactor) AddToken(token string) {
	if token == "" {
		return
	}
	r.mu.Lock()
	r.tokens = append(r.tokens, token)
	r.mu.Unlock()
}

// AddSource registers a function queried on every write for extra tokens.
func (r *Redactor) AddSource(source func() []string) {
	if source == nil {
		return
	}
	r.mu.Lock()
	r.sources = append(r.sources, source)
	r.mu.Unlock()
}

// AddPattern registers a pattern; it must declare a group named "filter".
func (r *Redactor) AddPattern(pattern *regexp.Regexp) error {
	if pattern == nil || pattern.SubexpIndex("filter") < 0 {
		return fmt.Errorf("pattern must contain a named group 'filter'")
	}
	r.mu.Lock()
	r.patterns = append(r.patterns, pattern)
	r.mu.Unlock()
	return nil
}

func (r *Redactor) Write(p []byte) (int, error) {
	if _, err := io.WriteString(r.out, r.Filter(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

type span struct{ start, end int }

// Filter returns content with every secret occurrence replaced. Overlapping
// occurrences are merged into a single replacement.
func (r *Redactor) Filter(content string) string {
	r.mu.RLock()
	tokens := append([]string(nil), r.tokens...)
	for _, source := range r.sources {
		tokens = append(tokens, source()...)
	}
	patterns := append([]*regexp.Regexp(nil), r.patterns...)
	r.mu.RUnlock()

	var spans []span
	for _, token := range tokens {
		if token == "" {
			continue
		}
		for from := 0; from < len(content); {
			idx := strings.Index(content[from:], token)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, span{start: start, end: start + len(token)})
			from = start + 1
		}
	}
	for _, pattern := range patterns {
		group := pattern.SubexpIndex("filter")
		for _, m := range pattern.FindAllStringSubmatchIndex(content, -1) {
			if m[2*group] >= 0 && m[2*group+1] > m[2*group] {
				spans = append(spans, span{start: m[2*group], end: m[2*group+1]})
			}
		}
	}
	if len(spans) == 0 {
		return content
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start < last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	prev := 0
	for _, s := range merged {
		b.WriteString(content[prev:s.start])
		b.WriteString(Redacted)
		prev = s.end
	}
	b.WriteString(content[prev:])
	return b.String()
}
