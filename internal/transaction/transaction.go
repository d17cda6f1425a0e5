// Package transaction groups units of work so they are applied together or
// rolled back together.
package transaction

import (
	"fmt"

	"github.com/alexisbeaulieu97/installkit/internal/logger"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// Element is a single unit of work inside a Transaction.
type Element interface {
	Prepare() error
	Commit() error
	Abort() error
	String() string
}

// Transaction sequences elements with fail-fast prepare, LIFO commit, and
// append-order abort.
type Transaction struct {
	log *logger.Logger

	elements []Element
	prepared []Element

	isPrepared bool
	failed     bool
	committed  bool
	busy       bool
}

// New creates an idle Transaction.
func New(log *logger.Logger) *Transaction {
	return &Transaction{log: log}
}

// Append adds element. Once the transaction is prepared the element is
// prepared immediately.
func (t *Transaction) Append(element Element) error {
	t.elements = append(t.elements, element)
	if !t.isPrepared || t.failed {
		return nil
	}

	t.busy = true
	defer func() { t.busy = false }()

	return t.prepareElement(element)
}

// Prepare prepares every element in append order and stops at the first
// failure. Elements prepared so far, including the failing one, stay
// recorded for Abort.
func (t *Transaction) Prepare() error {
	t.busy = true
	defer func() { t.busy = false }()

	t.isPrepared = true
	for _, element := range t.elements {
		if err := t.prepareElement(element); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transaction) prepareElement(element Element) error {
	t.log.Debug("preparing transaction element", "element", element.String())
	t.prepared = append(t.prepared, element)
	if err := element.Prepare(); err != nil {
		t.failed = true
		return kiterrors.NewTransactionError(element.String(), "prepare failed", err)
	}
	return nil
}

// Abort aborts every recorded prepared element in append order. Element
// failures are logged and never returned. Calling Abort again is a no-op.
func (t *Transaction) Abort() {
	if len(t.prepared) > 0 {
		t.log.Info("aborting transaction", "elements", len(t.prepared))
	}
	for _, element := range t.prepared {
		if err := element.Abort(); err != nil {
			t.log.Error(err, "unexpected exception during abort", "element", element.String())
		}
	}
	t.prepared = nil
	t.failed = true
}

// Commit commits prepared elements, most recently prepared first. Each
// element leaves the prepared list before its commit runs so a later Abort
// never touches committed work.
func (t *Transaction) Commit() error {
	if !t.isPrepared || t.failed {
		t.Abort()
		return kiterrors.NewTransactionError("", "transaction is not prepared or has failed", nil)
	}

	t.busy = true
	defer func() { t.busy = false }()

	for len(t.prepared) > 0 {
		last := len(t.prepared) - 1
		element := t.prepared[last]
		t.prepared = t.prepared[:last]

		t.log.Debug("committing transaction element", "element", element.String())
		if err := element.Commit(); err != nil {
			t.failed = true
			return kiterrors.NewTransactionError(element.String(), "commit failed", err)
		}
	}
	t.committed = true
	return nil
}

// Run prepares the transaction, calls fn, then commits. Any failure or
// panic aborts whatever is still recorded.
func (t *Transaction) Run(fn func(*Transaction) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.Abort()
			panic(r)
		}
		if err != nil {
			t.Abort()
		}
	}()

	if err = t.Prepare(); err != nil {
		return err
	}
	if fn != nil {
		if err = fn(t); err != nil {
			return err
		}
	}
	return t.Commit()
}

// Busy reports whether a prepare or commit is in progress.
func (t *Transaction) Busy() bool { return t.busy }

// Prepared reports whether Prepare has been called.
func (t *Transaction) Prepared() bool { return t.isPrepared }

// Failed reports whether an element failed or the transaction was aborted.
func (t *Transaction) Failed() bool { return t.failed }

// Committed reports whether Commit completed.
func (t *Transaction) Committed() bool { return t.committed }

// Len returns the number of appended elements.
func (t *Transaction) Len() int { return len(t.elements) }

// Pending returns the number of prepared elements not yet committed or aborted.
func (t *Transaction) Pending() int { return len(t.prepared) }

func (t *Transaction) String() string {
	return fmt.Sprintf("transaction(elements=%d prepared=%d)", len(t.elements), len(t.prepared))
}
