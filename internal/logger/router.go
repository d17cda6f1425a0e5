package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type sink struct {
	name  string
	level zerolog.Level
	out   io.Writer
}

// Router fans log records out to named sinks that can be attached and
// detached while the process runs. Each sink has its own minimum level.
type Router struct {
	mu    sync.Mutex
	sinks []sink
}

var _ zerolog.LevelWriter = (*Router)(nil)

// NewRouter returns a router without sinks; records are dropped until one is attached.
func NewRouter() *Router {
	return &Router{}
}

// Attach registers out under name, replacing any sink with the same name.
func (r *Router) Attach(name string, level zerolog.Level, out io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.sinks {
		if r.sinks[i].name == name {
			r.sinks[i] = sink{name: name, level: level, out: out}
			return
		}
	}
	r.sinks = append(r.sinks, sink{name: name, level: level, out: out})
}

// Detach removes the named sink and reports whether it was present.
func (r *Router) Detach(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.sinks {
		if r.sinks[i].name == name {
			r.sinks = append(r.sinks[:i], r.sinks[i+1:]...)
			return true
		}
	}
	return false
}

// Sinks lists attached sink names in attachment order.
func (r *Router) Sinks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.sinks))
	for _, s := range r.sinks {
		names = append(names, s.name)
	}
	return names
}

// Write implements io.Writer for records without a level.
func (r *Router) Write(p []byte) (int, error) {
	return r.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel forwards p to every sink accepting level. Sink failures are
// ignored so logging never fails the caller.
func (r *Router) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	r.mu.Lock()
	targets := append([]sink(nil), r.sinks...)
	r.mu.Unlock()

	for _, s := range targets {
		if level != zerolog.NoLevel && level < s.level {
			continue
		}
		_, _ = s.out.Write(p)
	}
	return len(p), nil
}

// NewFileWriter renders records as plain text lines suitable for a log file.
func NewFileWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

// NewConsoleWriter renders records for an interactive terminal.
func NewConsoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
	}
}

// LineWriter renders each record as exactly one line:
//
//	<prefix><LEVEL> <message>[ key=value ...]
//
// Embedded newlines are collapsed into spaces.
type LineWriter struct {
	prefix string
	out    io.Writer
}

// NewLineWriter creates a LineWriter writing to out.
func NewLineWriter(out io.Writer, prefix string) *LineWriter {
	return &LineWriter{prefix: prefix, out: out}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	var record map[string]any
	if err := json.Unmarshal(p, &record); err != nil {
		if _, err := fmt.Fprintf(w.out, "%s%s\n", w.prefix, flatten(string(p))); err != nil {
			return 0, err
		}
		return len(p), nil
	}

	level, _ := record[zerolog.LevelFieldName].(string)
	message, _ := record[zerolog.MessageFieldName].(string)
	delete(record, zerolog.LevelFieldName)
	delete(record, zerolog.MessageFieldName)
	delete(record, zerolog.TimestampFieldName)

	var b strings.Builder
	b.WriteString(w.prefix)
	b.WriteString(strings.ToUpper(level))
	b.WriteString(" ")
	b.WriteString(flatten(message))

	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%s", key, flatten(fmt.Sprint(record[key])))
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func flatten(s string) string {
	s = strings.TrimRight(s, "\n")
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
