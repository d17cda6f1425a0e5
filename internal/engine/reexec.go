package engine

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/alexisbeaulieu97/installkit/internal/environment"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

func defaultExec(argv0 string, argv, envv []string) error {
	return unix.Exec(argv0, argv, envv)
}

// Reexec replaces the process with a fresh instance of the same executable,
// arguments and environment. Listeners are told first so they can release
// or hand over resources; a failing listener cancels the re-exec.
func (c *Context) Reexec(ctx context.Context) error {
	if c.tx.Busy() {
		return kiterrors.NewTransactionError("", "cannot re-exec while the transaction is being prepared or committed", nil)
	}
	if err := ctx.Err(); err != nil {
		return kiterrors.NewAbortError("re-exec cancelled")
	}

	executable := c.Env.String(environment.ExecutablePath, "")
	if executable == "" {
		path, err := os.Executable()
		if err != nil {
			return kiterrors.NewIOError("resolve executable", "", err)
		}
		executable = path
	}

	args := c.args
	if len(args) == 0 {
		args = os.Args
	}

	if err := c.Notify(NotifyReexec); err != nil {
		return err
	}

	c.Log.Info("re-executing", "executable", executable)
	if err := c.exec(executable, args, os.Environ()); err != nil {
		return kiterrors.NewIOError("exec", executable, fmt.Errorf("re-exec failed: %w", err))
	}
	return nil
}
