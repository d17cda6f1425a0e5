package filetx

import (
	"context"
	"os"

	"github.com/alexisbeaulieu97/installkit/internal/command"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
)

// DefaultRestoreconPath is where the SELinux label tool usually lives.
const DefaultRestoreconPath = "/sbin/restorecon"

// LabelRestorer resets security labels below path.
type LabelRestorer interface {
	Restore(ctx context.Context, path string) error
}

// Restorecon runs restorecon -r when the tool is installed.
type Restorecon struct {
	Path   string
	Runner command.Runner
	Log    *logger.Logger
}

var _ LabelRestorer = (*Restorecon)(nil)

// NewRestorecon builds a restorer using the default tool location.
func NewRestorecon(runner command.Runner, log *logger.Logger) *Restorecon {
	return &Restorecon{Path: DefaultRestoreconPath, Runner: runner, Log: log}
}

// Restore is best-effort: a missing tool or a non-zero exit only logs a
// warning. Failing to execute an installed tool is returned.
func (r *Restorecon) Restore(ctx context.Context, path string) error {
	if r == nil || r.Runner == nil {
		return nil
	}
	if _, err := os.Stat(r.Path); err != nil {
		return nil
	}

	res, err := r.Runner.Run(ctx, r.Path, "-r", path)
	if err != nil {
		r.Log.Warn("cannot set selinux context", "path", path, "error", err.Error())
		return err
	}
	if res.ExitCode != 0 {
		r.Log.Warn("cannot set selinux context", "path", path, "rc", res.ExitCode, "stderr", res.Stderr)
	}
	return nil
}
