package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnifiedIdenticalContent(t *testing.T) {
	t.Parallel()

	content := []byte("line1\nline2\n")
	require.Empty(t, Unified(content, content, "a", "b"))
}

func TestUnifiedLineChanges(t *testing.T) {
	t.Parallel()

	before := []byte("line1\nline2\nline3\n")
	after := []byte("line1\nmodified\nline3\nline4\n")

	require.Equal(t,
		"--- old\n+++ new\n line1\n-line2\n+modified\n line3\n+line4\n",
		Unified(before, after, "old", "new"))
}

func TestUnifiedNewFile(t *testing.T) {
	t.Parallel()

	require.Equal(t, "--- /dev/null\n+++ keys\n+ssh-rsa AAAA\n", Unified(nil, []byte("ssh-rsa AAAA\n"), "/dev/null", "keys"))
}

func TestUnifiedTruncatesLargeDiffs(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < maxDiffLines+50; i++ {
		b.WriteString("x\n")
	}
	result := Unified(nil, []byte(b.String()), "a", "b")
	require.True(t, strings.HasSuffix(result, truncateMessage+"\n"))
	require.Equal(t, maxDiffLines+3, strings.Count(result, "\n"))
}
