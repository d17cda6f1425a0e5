package dialog

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

var (
	noteStyle   = lipgloss.NewStyle()
	promptStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Human prompts a person at a terminal. Invalid answers are asked again.
type Human struct {
	io *lineIO
}

var _ Dialog = (*Human)(nil)

// NewHuman reads answers from in and writes prompts to out.
func NewHuman(in io.Reader, out io.Writer, log *logger.Logger) *Human {
	return &Human{io: newLineIO(in, out, log)}
}

// Writer returns the serialized output so warnings can share it.
func (h *Human) Writer() *SyncWriter { return h.io.out }

func (h *Human) Name() string { return environment.DialectHuman }

// Note prints text line by line.
func (h *Human) Note(text string) error {
	return h.note(text, false)
}

func (h *Human) note(text string, prompt bool) error {
	lines := splitLines(text)
	var b strings.Builder
	for i, line := range lines {
		if prompt && i == len(lines)-1 {
			b.WriteString(promptStyle.Render(line))
			b.WriteString(": ")
			continue
		}
		b.WriteString(noteStyle.Render(line))
		b.WriteString("\n")
	}
	return h.io.write(b.String())
}

func (h *Human) complain(message string) error {
	return h.io.write(errorStyle.Render("[ERROR] "+message) + "\n")
}

// QueryString asks until the answer is acceptable.
func (h *Human) QueryString(q StringQuery) (string, error) {
	note := queryStringNote(q)
	for {
		if err := h.note(note, true); err != nil {
			return "", err
		}
		answer, err := h.io.readline(q.Hidden)
		if err != nil {
			return "", err
		}
		value, err := resolveAnswer(q, answer)
		if err == nil {
			return value, nil
		}
		var ve *kiterrors.ValidationError
		if !errors.As(err, &ve) {
			return "", err
		}
		if err := h.complain(ve.Message); err != nil {
			return "", err
		}
	}
}

// QueryMultiString reads lines until Boundary. AbortBoundary aborts.
func (h *Human) QueryMultiString(name, note string) ([]string, error) {
	if note == "" {
		note = fmt.Sprintf("\nPlease specify multiple strings for '%s':", name)
	}
	if err := h.Note(note); err != nil {
		return nil, err
	}
	if err := h.Note(fmt.Sprintf("type '%s' in own line to mark end, '%s' aborts", Boundary, AbortBoundary)); err != nil {
		return nil, err
	}

	value := []string{}
	for {
		line, err := h.io.readline(false)
		if err != nil {
			return nil, err
		}
		switch line {
		case Boundary:
			return value, nil
		case AbortBoundary:
			return nil, kiterrors.NewAbortError("Aborted by user")
		}
		value = append(value, line)
	}
}

// QueryValue asks for a typed value such as "int:5".
func (h *Human) QueryValue(name, note string) (any, error) {
	if note == "" {
		note = fmt.Sprintf("\nPlease specify value for '%s' (type:value)", name)
	}
	for {
		if err := h.note(note, true); err != nil {
			return nil, err
		}
		answer, err := h.io.readline(false)
		if err != nil {
			return nil, err
		}
		value, err := environment.ParseTyped(answer)
		if err == nil {
			return value, nil
		}
		if err := h.complain(err.Error()); err != nil {
			return nil, err
		}
	}
}

// Confirm asks until the answer is yes or no.
func (h *Human) Confirm(name, description, note string) (bool, error) {
	if note == "" {
		note = fmt.Sprintf("\nPlease confirm '%s' %s (yes, no)", name, description)
	}
	for {
		if err := h.note(note, true); err != nil {
			return false, err
		}
		answer, err := h.io.readline(false)
		if err != nil {
			return false, err
		}
		if isYes(answer) {
			return true, nil
		}
		if isNo(answer) {
			return false, nil
		}
		if err := h.complain("Please answer yes or no"); err != nil {
			return false, err
		}
	}
}

// DisplayValue prints "name: value".
func (h *Human) DisplayValue(name string, value any, note string) error {
	if note != "" {
		if err := h.Note(note); err != nil {
			return err
		}
	}
	return h.io.write(fmt.Sprintf("%s: %s\n", name, valueStyle.Render(fmt.Sprint(value))))
}

// DisplayMultiString prints value one entry per line.
func (h *Human) DisplayMultiString(name string, value []string, note string) error {
	if note != "" {
		if err := h.Note(note); err != nil {
			return err
		}
	}
	var b strings.Builder
	for _, line := range value {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return h.io.write(b.String())
}

// Terminate has nothing to tell a person.
func (h *Human) Terminate() error { return nil }
