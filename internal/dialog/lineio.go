package dialog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/alexisbeaulieu97/installkit/internal/logger"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// SyncWriter serializes writes so dialog lines and log lines sharing one
// stream never interleave.
type SyncWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewSyncWriter wraps out.
func NewSyncWriter(out io.Writer) *SyncWriter {
	return &SyncWriter{out: out}
}

func (w *SyncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}

// Sync flushes the underlying stream when it supports it. Terminals and
// pipes reject fsync; that is ignored.
func (w *SyncWriter) Sync() {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch out := w.out.(type) {
	case interface{ Flush() error }:
		_ = out.Flush()
	case *os.File:
		_ = out.Sync()
	}
}

// lineIO is the transport shared by the dialects.
type lineIO struct {
	in     *bufio.Reader
	inFile *os.File
	out    *SyncWriter
	log    *logger.Logger
}

func newLineIO(in io.Reader, out io.Writer, log *logger.Logger) *lineIO {
	l := &lineIO{
		in:  bufio.NewReader(in),
		log: log,
	}
	if f, ok := in.(*os.File); ok {
		l.inFile = f
	}
	if sw, ok := out.(*SyncWriter); ok {
		l.out = sw
	} else {
		l.out = NewSyncWriter(out)
	}
	return l
}

func (l *lineIO) logLines(direction, text string) {
	for _, line := range splitLines(text) {
		l.log.Debug(fmt.Sprintf("DIALOG:%-10s %s", direction, line))
	}
}

func (l *lineIO) write(text string) error {
	l.logLines("SEND", text)
	if _, err := io.WriteString(l.out, text); err != nil {
		return kiterrors.NewIOError("write", "dialog", err)
	}
	l.out.Sync()
	return nil
}

// readline returns one line without its terminator. End of input is an
// IOError. Hidden answers are read without echo on a terminal and are never
// logged.
func (l *lineIO) readline(hidden bool) (string, error) {
	if hidden && l.inFile != nil && term.IsTerminal(int(l.inFile.Fd())) {
		raw, err := term.ReadPassword(int(l.inFile.Fd()))
		if err == nil {
			_, _ = io.WriteString(l.out, "\n")
			return string(raw), nil
		}
		l.log.Debug("hidden read failed, falling back to plain read", "error", err.Error())
	}

	value, err := l.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && value != "") {
		if errors.Is(err, io.EOF) {
			return "", kiterrors.NewIOError("read", "dialog", errors.New("end of file"))
		}
		return "", kiterrors.NewIOError("read", "dialog", err)
	}

	value = strings.TrimRight(value, "\r\n")
	if !hidden {
		l.logLines("RECEIVE", value)
	}
	return value, nil
}

// splitLines splits like a line reader: a single trailing newline does not
// produce an empty last line, and empty text is one empty line.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
