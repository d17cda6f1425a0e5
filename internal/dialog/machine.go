package dialog

import (
	"fmt"
	"io"
	"strings"

	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// Machine protocol line prefixes and opcodes.
const (
	RequestPrefix    = "***"
	QueryExtraPrefix = "**%"
	NotePrefix       = "#"
	LogPrefix        = "L:"

	QueryStart        = "QStart:"
	QueryEnd          = "QEnd:"
	QueryDefaultValue = "QDefault:"
	QueryValidValues  = "QValidValues:"
	QueryHidden       = "QHidden:"
	QueryHiddenTrue   = "TRUE"
	QueryHiddenFalse  = "FALSE"

	OpQueryString        = "Q:STRING"
	OpQueryMultiString   = "Q:MULTI-STRING"
	OpQueryValue         = "Q:VALUE"
	OpDisplayValue       = "D:VALUE"
	OpDisplayMultiString = "D:MULTI-STRING"
	OpConfirm            = "CONFIRM"
	OpTerminate          = "TERMINATE"

	ResponseValue   = "VALUE"
	ResponseAbort   = "ABORT"
	ResponseConfirm = "CONFIRM"
)

// LogLinePrefix starts every log record forwarded over the machine channel.
const LogLinePrefix = RequestPrefix + LogPrefix

var notePrefix = strings.Repeat(NotePrefix, 3)

// Machine speaks the line protocol used by a controlling program.
type Machine struct {
	io *lineIO
}

var _ Dialog = (*Machine)(nil)

// NewMachine reads answers from in and writes requests to out.
func NewMachine(in io.Reader, out io.Writer, log *logger.Logger) *Machine {
	return &Machine{io: newLineIO(in, out, log)}
}

// Writer returns the serialized output so log records can share it.
func (m *Machine) Writer() *SyncWriter { return m.io.out }

func (m *Machine) Name() string { return environment.DialectMachine }

// Note emits one note line per line of text.
func (m *Machine) Note(text string) error {
	var b strings.Builder
	for _, line := range splitLines(text) {
		b.WriteString(notePrefix)
		if line != "" {
			b.WriteString(" ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return m.io.write(b.String())
}

func (m *Machine) writef(format string, args ...any) error {
	return m.io.write(fmt.Sprintf(format, args...))
}

func (m *Machine) queryStart(name string) error {
	return m.writef("%s%s %s\n", QueryExtraPrefix, QueryStart, name)
}

func (m *Machine) queryEnd(name string) error {
	return m.writef("%s%s %s\n", QueryExtraPrefix, QueryEnd, name)
}

// QueryString asks for a single line.
func (m *Machine) QueryString(q StringQuery) (string, error) {
	if err := m.queryStart(q.Name); err != nil {
		return "", err
	}
	if err := m.Note(queryStringNote(q)); err != nil {
		return "", err
	}
	if q.Default != "" {
		if err := m.writef("%s%s %s\n", QueryExtraPrefix, QueryDefaultValue, q.Default); err != nil {
			return "", err
		}
	}
	if len(q.ValidValues) > 0 {
		if err := m.writef("%s%s %s\n", QueryExtraPrefix, QueryValidValues, escapeValidValues(q.ValidValues)); err != nil {
			return "", err
		}
	}
	hidden := QueryHiddenFalse
	if q.Hidden {
		hidden = QueryHiddenTrue
	}
	if err := m.writef("%s%s %s\n", QueryExtraPrefix, QueryHidden, hidden); err != nil {
		return "", err
	}
	if err := m.writef("%s%s %s\n", RequestPrefix, OpQueryString, q.Name); err != nil {
		return "", err
	}
	if err := m.queryEnd(q.Name); err != nil {
		return "", err
	}

	answer, err := m.io.readline(q.Hidden)
	if err != nil {
		return "", err
	}
	return resolveAnswer(q, answer)
}

// QueryMultiString reads lines until Boundary. AbortBoundary aborts.
func (m *Machine) QueryMultiString(name, note string) ([]string, error) {
	if note == "" {
		note = fmt.Sprintf("\nPlease specify multiple strings for '%s':", name)
	}
	if err := m.queryStart(name); err != nil {
		return nil, err
	}
	if err := m.Note(note); err != nil {
		return nil, err
	}
	if err := m.Note(fmt.Sprintf("type '%s' in own line to mark end, '%s' aborts", Boundary, AbortBoundary)); err != nil {
		return nil, err
	}
	if err := m.writef("%s%s %s %s %s\n", RequestPrefix, OpQueryMultiString, name, Boundary, AbortBoundary); err != nil {
		return nil, err
	}
	if err := m.queryEnd(name); err != nil {
		return nil, err
	}

	value := []string{}
	for {
		line, err := m.io.readline(false)
		if err != nil {
			return nil, err
		}
		switch line {
		case Boundary:
			return value, nil
		case AbortBoundary:
			return nil, kiterrors.NewAbortError("Aborted by dialog")
		}
		value = append(value, line)
	}
}

// QueryValue reads "VALUE name=type:value" or "ABORT name".
func (m *Machine) QueryValue(name, note string) (any, error) {
	if note == "" {
		note = fmt.Sprintf("\nPlease specify value for '%s':", name)
	}
	if err := m.queryStart(name); err != nil {
		return nil, err
	}
	if err := m.Note(note); err != nil {
		return nil, err
	}
	if err := m.Note(fmt.Sprintf("Response is %s %s=type:value or %s %s", ResponseValue, name, ResponseAbort, name)); err != nil {
		return nil, err
	}
	if err := m.writef("%s%s %s\n", RequestPrefix, OpQueryValue, name); err != nil {
		return nil, err
	}
	if err := m.queryEnd(name); err != nil {
		return nil, err
	}

	opcode, payload, hasPayload, err := m.readResponse(name)
	if err != nil {
		return nil, err
	}
	switch opcode {
	case ResponseAbort:
		return nil, kiterrors.NewAbortError("Aborted by dialog")
	case ResponseValue:
		if !hasPayload {
			return nil, kiterrors.NewProtocolError(fmt.Sprintf("value not provided for '%s'", name), nil)
		}
		value, err := environment.ParseTyped(payload)
		if err != nil {
			return nil, kiterrors.NewProtocolError(fmt.Sprintf("invalid value for '%s'", name), err)
		}
		return value, nil
	default:
		return nil, kiterrors.NewProtocolError(fmt.Sprintf("Invalid response opcode '%s'", opcode), nil)
	}
}

// Confirm asks a yes/no question answered by "CONFIRM name=yes|no".
func (m *Machine) Confirm(name, description, note string) (bool, error) {
	if note == "" {
		note = fmt.Sprintf("\nPlease confirm '%s' %s\n", name, description)
	}
	if err := m.writef("%s%s %s %s\n", RequestPrefix, OpConfirm, name, description); err != nil {
		return false, err
	}
	if err := m.Note(note); err != nil {
		return false, err
	}
	if err := m.Note(fmt.Sprintf("Response is %s %s=yes|no or %s %s", ResponseConfirm, name, ResponseAbort, name)); err != nil {
		return false, err
	}

	opcode, payload, hasPayload, err := m.readResponse(name)
	if err != nil {
		return false, err
	}
	switch opcode {
	case ResponseAbort:
		return false, kiterrors.NewAbortError("Aborted by dialog")
	case ResponseConfirm:
		if !hasPayload {
			return false, kiterrors.NewProtocolError(fmt.Sprintf("value not provided for '%s'", name), nil)
		}
		if isYes(payload) {
			return true, nil
		}
		if isNo(payload) {
			return false, nil
		}
		return false, kiterrors.NewProtocolError(fmt.Sprintf("invalid confirmation '%s' for '%s'", payload, name), nil)
	default:
		return false, kiterrors.NewProtocolError(fmt.Sprintf("Invalid response opcode '%s'", opcode), nil)
	}
}

// readResponse parses "OPCODE name[=payload]" and checks the name.
func (m *Machine) readResponse(name string) (opcode, payload string, hasPayload bool, err error) {
	line, err := m.io.readline(false)
	if err != nil {
		return "", "", false, err
	}

	opcode, variable, ok := strings.Cut(line, " ")
	if !ok {
		return "", "", false, kiterrors.NewProtocolError(fmt.Sprintf("malformed response '%s'", line), nil)
	}
	received, payload, hasPayload := strings.Cut(variable, "=")
	if received != name {
		return "", "", false, kiterrors.NewProtocolError(
			fmt.Sprintf("Expected response for %s, received '%s'", name, received), nil)
	}
	return opcode, payload, hasPayload, nil
}

// DisplayValue sends "D:VALUE name=type:value". A value whose encoding
// spans lines is refused; multi-str items escape their own line breaks.
func (m *Machine) DisplayValue(name string, value any, note string) error {
	encoded := environment.FormatTyped(value)
	if strings.ContainsAny(encoded, "\r\n") {
		return kiterrors.NewProtocolError(fmt.Sprintf("value of '%s' contains a line break", name), nil)
	}
	if note != "" {
		if err := m.Note(note); err != nil {
			return err
		}
	}
	return m.writef("%s%s %s=%s\n", RequestPrefix, OpDisplayValue, name, encoded)
}

// DisplayMultiString sends value framed by Boundary lines.
func (m *Machine) DisplayMultiString(name string, value []string, note string) error {
	for _, line := range value {
		if strings.ContainsAny(line, "\r\n") || line == Boundary {
			return kiterrors.NewProtocolError(fmt.Sprintf("line of '%s' cannot be framed", name), nil)
		}
	}
	if note != "" {
		if err := m.Note(note); err != nil {
			return err
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %s %s\n", RequestPrefix, OpDisplayMultiString, name, Boundary)
	for _, line := range value {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(Boundary)
	b.WriteString("\n")
	return m.io.write(b.String())
}

// Terminate tells the controller the session is over.
func (m *Machine) Terminate() error {
	return m.writef("%s%s\n", RequestPrefix, OpTerminate)
}
