package transaction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/installkit/internal/logger"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

type recorder struct {
	calls []string
}

type fakeElement struct {
	name       string
	rec        *recorder
	prepareErr error
	commitErr  error
	abortErr   error
}

func (f *fakeElement) Prepare() error {
	f.rec.calls = append(f.rec.calls, "prepare:"+f.name)
	return f.prepareErr
}

func (f *fakeElement) Commit() error {
	f.rec.calls = append(f.rec.calls, "commit:"+f.name)
	return f.commitErr
}

func (f *fakeElement) Abort() error {
	f.rec.calls = append(f.rec.calls, "abort:"+f.name)
	return f.abortErr
}

func (f *fakeElement) String() string { return f.name }

func newElements(rec *recorder, names ...string) []*fakeElement {
	out := make([]*fakeElement, 0, len(names))
	for _, name := range names {
		out = append(out, &fakeElement{name: name, rec: rec})
	}
	return out
}

func TestCommitRunsInReverseOfAppendOrder(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	tx := New(logger.Nop())
	for _, el := range newElements(rec, "A", "B", "C") {
		require.NoError(t, tx.Append(el))
	}

	require.NoError(t, tx.Prepare())
	require.NoError(t, tx.Commit())

	// Commit is LIFO while Abort is append order; both orders are deliberate.
	require.Equal(t, []string{
		"prepare:A", "prepare:B", "prepare:C",
		"commit:C", "commit:B", "commit:A",
	}, rec.calls)
	require.True(t, tx.Committed())

	tx.Abort()
	require.Len(t, rec.calls, 6, "abort after commit must not touch committed elements")
}

func TestPrepareFailureStopsAndCommitRefuses(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	elements := newElements(rec, "A", "B", "C")
	elements[1].prepareErr = errors.New("disk full")

	tx := New(logger.Nop())
	for _, el := range elements {
		require.NoError(t, tx.Append(el))
	}

	err := tx.Prepare()
	var txErr *kiterrors.TransactionError
	require.True(t, errors.As(err, &txErr))
	require.Equal(t, "B", txErr.Element)
	require.True(t, tx.Failed())

	err = tx.Commit()
	require.Error(t, err)

	require.Equal(t, []string{
		"prepare:A", "prepare:B",
		"abort:A", "abort:B",
	}, rec.calls)
	require.NotContains(t, rec.calls, "prepare:C")
}

func TestAbortIsIdempotentAndSwallowsFailures(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	elements := newElements(rec, "A", "B")
	elements[0].abortErr = errors.New("cannot restore")

	tx := New(logger.Nop())
	for _, el := range elements {
		require.NoError(t, tx.Append(el))
	}
	require.NoError(t, tx.Prepare())

	tx.Abort()
	tx.Abort()

	require.Equal(t, []string{"prepare:A", "prepare:B", "abort:A", "abort:B"}, rec.calls)
	require.Equal(t, 0, tx.Pending())
}

func TestAppendAfterPrepareAutoPrepares(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	tx := New(logger.Nop())
	require.NoError(t, tx.Prepare())

	late := newElements(rec, "late")[0]
	require.NoError(t, tx.Append(late))
	require.Equal(t, []string{"prepare:late"}, rec.calls)
	require.Equal(t, 1, tx.Pending())

	require.NoError(t, tx.Commit())
	require.Equal(t, []string{"prepare:late", "commit:late"}, rec.calls)
}

func TestAppendAfterAbortDoesNotPrepare(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	tx := New(logger.Nop())
	require.NoError(t, tx.Prepare())
	tx.Abort()

	require.NoError(t, tx.Append(newElements(rec, "ignored")[0]))
	require.Empty(t, rec.calls)
	require.Equal(t, 1, tx.Len())
}

func TestCommitWithoutPrepareIsStateError(t *testing.T) {
	t.Parallel()

	tx := New(logger.Nop())
	err := tx.Commit()
	var txErr *kiterrors.TransactionError
	require.True(t, errors.As(err, &txErr))
	require.False(t, tx.Committed())
}

func TestCommitFailureKeepsOnlyUncommittedForAbort(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	elements := newElements(rec, "A", "B", "C")
	elements[1].commitErr = errors.New("rename failed")

	tx := New(logger.Nop())
	for _, el := range elements {
		require.NoError(t, tx.Append(el))
	}
	require.NoError(t, tx.Prepare())
	require.Error(t, tx.Commit())

	tx.Abort()
	require.Equal(t, []string{
		"prepare:A", "prepare:B", "prepare:C",
		"commit:C", "commit:B",
		"abort:A",
	}, rec.calls)
}

func TestRunCommitsOrAborts(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	tx := New(logger.Nop())
	require.NoError(t, tx.Append(newElements(rec, "A")[0]))

	err := tx.Run(func(tx *Transaction) error {
		require.True(t, tx.Prepared())
		return tx.Append(newElements(rec, "B")[0])
	})
	require.NoError(t, err)
	require.Equal(t, []string{"prepare:A", "prepare:B", "commit:B", "commit:A"}, rec.calls)

	rec2 := &recorder{}
	tx2 := New(logger.Nop())
	require.NoError(t, tx2.Append(newElements(rec2, "A")[0]))
	err = tx2.Run(func(*Transaction) error { return errors.New("handler failed") })
	require.EqualError(t, err, "handler failed")
	require.Equal(t, []string{"prepare:A", "abort:A"}, rec2.calls)
}

func TestRunAbortsOnPanic(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	tx := New(logger.Nop())
	require.NoError(t, tx.Append(newElements(rec, "A")[0]))

	require.Panics(t, func() {
		_ = tx.Run(func(*Transaction) error { panic("boom") })
	})
	require.Equal(t, []string{"prepare:A", "abort:A"}, rec.calls)
}
