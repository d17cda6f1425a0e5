package dialog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/installkit/internal/logger"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

func newMachine(input string) (*Machine, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewMachine(strings.NewReader(input), out, logger.Nop()), out
}

func hostQuery() StringQuery {
	return StringQuery{Name: "Host", ValidValues: []string{"a", "b"}, Default: "a"}
}

func TestMachineQueryStringWireFormat(t *testing.T) {
	t.Parallel()

	m, out := newMachine("\n")
	got, err := m.QueryString(hostQuery())
	require.NoError(t, err)
	require.Equal(t, "a", got)

	require.Equal(t, strings.Join([]string{
		"**%QStart: Host",
		"###",
		"### Please specify 'Host' (a, b) [a]",
		"**%QDefault: a",
		"**%QValidValues: a|b",
		"**%QHidden: FALSE",
		"***Q:STRING Host",
		"**%QEnd: Host",
	}, "\n")+"\n", out.String())
}

func TestMachineQueryStringValidation(t *testing.T) {
	t.Parallel()

	m, _ := newMachine("x\n")
	_, err := m.QueryString(hostQuery())
	var ve *kiterrors.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "Invalid value provided to 'Host'", ve.Message)

	m, _ = newMachine("B\n")
	q := hostQuery()
	q.CaseInsensitive = true
	got, err := m.QueryString(q)
	require.NoError(t, err)
	require.Equal(t, "b", got)

	m, _ = newMachine("B\n")
	_, err = m.QueryString(hostQuery())
	require.Error(t, err, "case sensitive by default")

	m, _ = newMachine("\n")
	_, err = m.QueryString(StringQuery{Name: "Free"})
	require.Error(t, err, "empty answer without default")

	m, _ = newMachine("anything goes\n")
	got, err = m.QueryString(StringQuery{Name: "Free"})
	require.NoError(t, err)
	require.Equal(t, "anything goes", got)
}

func TestMachineQueryStringEndOfInput(t *testing.T) {
	t.Parallel()

	m, _ := newMachine("")
	_, err := m.QueryString(hostQuery())
	var ioErr *kiterrors.IOError
	require.True(t, errors.As(err, &ioErr))
}

func TestMachineHiddenAnswerIsNotLogged(t *testing.T) {
	t.Parallel()

	logs := &bytes.Buffer{}
	log, err := logger.New(logger.Options{Level: "debug", Writer: logs})
	require.NoError(t, err)

	m := NewMachine(strings.NewReader("s3cret\nvisible\n"), &bytes.Buffer{}, log)
	got, err := m.QueryString(StringQuery{Name: "Password", Hidden: true})
	require.NoError(t, err)
	require.Equal(t, "s3cret", got)
	require.NotContains(t, logs.String(), "s3cret")
	require.Contains(t, logs.String(), "**%QHidden: TRUE")

	_, err = m.QueryString(StringQuery{Name: "Other"})
	require.NoError(t, err)
	require.Contains(t, logs.String(), "DIALOG:RECEIVE    visible")
}

func TestMachineQueryMultiString(t *testing.T) {
	t.Parallel()

	m, out := newMachine("x\ny\n" + Boundary + "\n")
	got, err := m.QueryMultiString("keys", "")
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, got)
	require.Contains(t, out.String(), "***Q:MULTI-STRING keys "+Boundary+" "+AbortBoundary+"\n")

	m, _ = newMachine("x\n" + AbortBoundary + "\n")
	_, err = m.QueryMultiString("keys", "")
	require.True(t, kiterrors.IsAbort(err))

	m, _ = newMachine(Boundary + "\n")
	got, err = m.QueryMultiString("keys", "")
	require.NoError(t, err)
	require.Empty(t, got)

	m, _ = newMachine("x\n")
	_, err = m.QueryMultiString("keys", "")
	var ioErr *kiterrors.IOError
	require.True(t, errors.As(err, &ioErr))
}

func TestMachineQueryValue(t *testing.T) {
	t.Parallel()

	m, out := newMachine("VALUE port=int:22\n")
	got, err := m.QueryValue("port", "")
	require.NoError(t, err)
	require.Equal(t, 22, got)
	require.Contains(t, out.String(), "***Q:VALUE port\n")
	require.Contains(t, out.String(), "### Response is VALUE port=type:value or ABORT port\n")

	m, _ = newMachine("VALUE names=multi-str:a,b\n")
	got, err = m.QueryValue("names", "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got)

	m, _ = newMachine("ABORT port\n")
	_, err = m.QueryValue("port", "")
	require.True(t, kiterrors.IsAbort(err))

	for _, response := range []string{
		"VALUE other=int:1",
		"VALUE port",
		"SET port=int:1",
		"garbage",
		"VALUE port=float:1.5",
	} {
		m, _ = newMachine(response + "\n")
		_, err = m.QueryValue("port", "")
		var pe *kiterrors.ProtocolError
		require.True(t, errors.As(err, &pe), response)
		require.False(t, kiterrors.IsAbort(err), response)
	}
}

func TestMachineConfirm(t *testing.T) {
	t.Parallel()

	m, out := newMachine("CONFIRM go=YES\n")
	ok, err := m.Confirm("go", "to proceed", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(out.String(), "***CONFIRM go to proceed\n"))

	m, _ = newMachine("CONFIRM go=no\n")
	ok, err = m.Confirm("go", "to proceed", "")
	require.NoError(t, err)
	require.False(t, ok)

	m, _ = newMachine("ABORT go\n")
	_, err = m.Confirm("go", "to proceed", "")
	require.True(t, kiterrors.IsAbort(err))

	m, _ = newMachine("VALUE go=bool:true\n")
	_, err = m.Confirm("go", "to proceed", "")
	var pe *kiterrors.ProtocolError
	require.True(t, errors.As(err, &pe))
}

func TestMachineDisplayAndTerminate(t *testing.T) {
	t.Parallel()

	m, out := newMachine("")
	require.NoError(t, m.DisplayValue("port", 22, ""))
	require.NoError(t, m.DisplayMultiString("files", []string{"/etc/a", "/etc/b"}, "Modified files:"))
	require.NoError(t, m.DisplayMultiString("none", nil, ""))
	require.NoError(t, m.Terminate())

	require.Equal(t, strings.Join([]string{
		"***D:VALUE port=int:22",
		"### Modified files:",
		"***D:MULTI-STRING files " + Boundary,
		"/etc/a",
		"/etc/b",
		Boundary,
		"***D:MULTI-STRING none " + Boundary,
		Boundary,
		"***TERMINATE",
	}, "\n")+"\n", out.String())
}

func TestMachineDisplayRefusesLineBreaks(t *testing.T) {
	t.Parallel()

	m, out := newMachine("")
	var protocol *kiterrors.ProtocolError

	err := m.DisplayValue("motd", "hello\n***TERMINATE", "note")
	require.ErrorAs(t, err, &protocol)
	require.ErrorAs(t, m.DisplayValue("motd", "a\rb", ""), &protocol)
	require.ErrorAs(t, m.DisplayMultiString("files", []string{"a\nb"}, ""), &protocol)
	require.ErrorAs(t, m.DisplayMultiString("files", []string{Boundary}, ""), &protocol)
	require.Empty(t, out.String())

	require.NoError(t, m.DisplayValue("lines", []string{"one\ntwo", ""}, ""))
	require.Equal(t, "***D:VALUE lines=multi-str:one\\ntwo,\\0\n", out.String())
}

func TestMachineNoteSplitsLines(t *testing.T) {
	t.Parallel()

	m, out := newMachine("")
	require.NoError(t, m.Note("one\ntwo\n"))
	require.NoError(t, m.Note(""))
	require.Equal(t, "### one\n### two\n###\n", out.String())
}

func TestEscapeValidValues(t *testing.T) {
	t.Parallel()

	require.Equal(t, `a\|b|c\\d|e`, escapeValidValues([]string{"a|b", `c\d`, "e"}))
}

func TestQueryStringNoteSubstitution(t *testing.T) {
	t.Parallel()

	require.Equal(t, "\nPlease specify 'Host'", queryStringNote(StringQuery{Name: "Host"}))
	require.Equal(t, "pick @ one of x, y or z",
		queryStringNote(StringQuery{Name: "n", Note: "pick @ one of @VALUES@ or @DEFAULT@", ValidValues: []string{"x", "y"}, Default: "z"}))
}
