// Package filetx implements a transaction element that replaces one file
// with backup, atomic move and rollback.
package filetx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/alexisbeaulieu97/installkit/internal/logger"
	"github.com/alexisbeaulieu97/installkit/internal/transaction"
	"github.com/alexisbeaulieu97/installkit/pkg/diff"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

const (
	DefaultMode    os.FileMode = 0o644
	DefaultDirMode os.FileMode = 0o755

	backupTimeFormat = "20060102150405"
)

// Options tune a FileTransaction. Owner and group fields take names or
// numeric ids; empty means leave unchanged, except that an empty group
// follows the owner's primary group when an owner is set.
type Options struct {
	Mode     os.FileMode
	Owner    string
	Group    string
	DirMode  os.FileMode
	DirOwner string
	DirGroup string

	// EnforcePermissions applies Mode/Owner/Group even when the file exists.
	EnforcePermissions bool
	// VisibleButUnsafe moves new content into place during Prepare.
	VisibleButUnsafe bool

	Modified *ModifiedList
	Restorer LabelRestorer
	Mover    Mover
	Log      *logger.Logger
}

// FileTransaction writes Content to Path as part of a transaction.
type FileTransaction struct {
	Path    string
	Content []byte
	opts    Options

	prepared   bool
	differs    bool
	missing    bool
	visible    bool
	committed  bool
	backup     string
	tmp        string
	createdDir string

	now  func() time.Time
	copy func(src, dst string, preserveOwner bool) error
}

var _ transaction.Element = (*FileTransaction)(nil)

// New returns an element that replaces path with content.
func New(path string, content []byte, opts Options) *FileTransaction {
	if opts.Mode == 0 {
		opts.Mode = DefaultMode
	}
	if opts.DirMode == 0 {
		opts.DirMode = DefaultDirMode
	}
	return &FileTransaction{
		Path:    filepath.Clean(path),
		Content: append([]byte(nil), content...),
		opts:    opts,
		now:     time.Now,
		copy:    copyFile,
	}
}

func (f *FileTransaction) String() string {
	return fmt.Sprintf("file transaction for '%s'", f.Path)
}

// Differs reports whether Prepare found content to change.
func (f *FileTransaction) Differs() bool { return f.differs }

// BackupPath returns the backup created during Prepare, if any.
func (f *FileTransaction) BackupPath() string { return f.backup }

// CreatedDir returns the top-most directory created during Prepare, if any.
func (f *FileTransaction) CreatedDir() string { return f.createdDir }

func (f *FileTransaction) mover() Mover {
	if f.opts.Mover != nil {
		return f.opts.Mover
	}
	return currentMover()
}

// Prepare stages the new content next to the target. Identical content
// makes the element a no-op.
func (f *FileTransaction) Prepare() error {
	current, err := os.ReadFile(f.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.missing = true
	case err != nil:
		return kiterrors.NewIOError("read", f.Path, err)
	case bytes.Equal(current, f.Content):
		f.opts.Log.Debug("file content unchanged", "path", f.Path)
		return nil
	}
	f.differs = true
	f.opts.Log.Debug("file content changes", "path", f.Path, "diff", diff.Unified(current, f.Content, f.Path, f.Path+" (new)"))

	mode := f.opts.Mode
	uid, gid, err := lookupOwner(f.opts.Owner, f.opts.Group)
	if err != nil {
		return kiterrors.NewIOError("chown", f.Path, err)
	}

	dir := filepath.Dir(f.Path)
	if f.missing {
		created, err := f.createParents(dir)
		if err != nil {
			return kiterrors.NewIOError("mkdir", dir, err)
		}
		f.createdDir = created
	} else {
		// fail before any destructive step when the target is not writable
		writable, err := os.OpenFile(f.Path, os.O_WRONLY, 0)
		if err != nil {
			return kiterrors.NewIOError("open", f.Path, err)
		}
		writable.Close()

		var st unix.Stat_t
		if err := unix.Stat(f.Path, &st); err != nil {
			return kiterrors.NewIOError("stat", f.Path, err)
		}
		if !f.opts.EnforcePermissions {
			mode = modeFromStat(uint32(st.Mode))
			uid = int(st.Uid)
			gid = int(st.Gid)
		}

		backup := fmt.Sprintf("%s.%s", f.Path, f.now().Format(backupTimeFormat))
		f.opts.Log.Debug("backing up file", "path", f.Path, "backup", backup)
		if err := f.copy(f.Path, backup, true); err != nil {
			if rmErr := os.Remove(backup); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				f.opts.Log.Warn("cannot remove partial backup", "backup", backup, "error", rmErr.Error())
			}
			return kiterrors.NewIOError("backup", backup, err)
		}
		f.backup = backup
		if err := os.Lchown(backup, int(st.Uid), int(st.Gid)); err != nil {
			f.opts.Log.Warn("cannot restore backup ownership", "backup", backup, "error", err.Error())
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return kiterrors.NewIOError("create", dir, err)
	}
	f.tmp = tmp.Name()
	f.prepared = true

	if err := writeStaged(tmp, f.Content, mode, uid, gid); err != nil {
		return kiterrors.NewIOError("write", f.tmp, err)
	}

	if f.opts.VisibleButUnsafe {
		if err := f.mover()(f.tmp, f.Path); err != nil {
			return kiterrors.NewIOError("move", f.Path, err)
		}
		f.tmp = ""
		f.visible = true
	}
	return nil
}

func writeStaged(tmp *os.File, content []byte, mode os.FileMode, uid, gid int) error {
	if uid != unchanged || gid != unchanged {
		if err := tmp.Chown(uid, gid); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	return tmp.Close()
}

// createParents creates dir and its missing ancestors and returns the
// top-most directory it created.
func (f *FileTransaction) createParents(dir string) (string, error) {
	var missing []string
	for current := dir; ; current = filepath.Dir(current) {
		if _, err := os.Stat(current); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		missing = append(missing, current)
		if parent := filepath.Dir(current); parent == current {
			break
		}
	}
	if len(missing) == 0 {
		return "", nil
	}

	uid, gid, err := lookupOwner(f.opts.DirOwner, f.opts.DirGroup)
	if err != nil {
		return "", err
	}

	for i := len(missing) - 1; i >= 0; i-- {
		path := missing[i]
		if err := os.Mkdir(path, f.opts.DirMode); err != nil && !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		if err := os.Chmod(path, f.opts.DirMode); err != nil {
			return "", err
		}
		if uid != unchanged || gid != unchanged {
			if err := os.Chown(path, uid, gid); err != nil {
				return "", err
			}
		}
	}
	return missing[len(missing)-1], nil
}

// Commit makes staged content visible, records the path and restores
// security labels.
func (f *FileTransaction) Commit() error {
	if !f.prepared {
		return nil
	}

	if !f.visible {
		if err := f.mover()(f.tmp, f.Path); err != nil {
			return kiterrors.NewIOError("move", f.Path, err)
		}
		f.tmp = ""
		f.visible = true
	}
	f.committed = true

	if f.opts.Modified != nil {
		f.opts.Modified.Add(f.Path)
	}

	if f.opts.Restorer != nil {
		target := f.Path
		if f.createdDir != "" {
			target = f.createdDir
		}
		if err := f.opts.Restorer.Restore(context.Background(), target); err != nil {
			return kiterrors.NewIOError("restorecon", target, err)
		}
	}
	return nil
}

// Abort returns the target to its state before Prepare. Failures are logged
// and never returned.
func (f *FileTransaction) Abort() error {
	if f.committed {
		return nil
	}

	if f.visible {
		switch {
		case f.missing:
			if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				f.opts.Log.Error(err, "cannot remove file during rollback", "path", f.Path)
			}
		case f.backup != "":
			if err := f.mover()(f.backup, f.Path); err != nil {
				f.opts.Log.Error(err, "cannot restore backup", "path", f.Path, "backup", f.backup)
			} else {
				f.backup = ""
			}
		}
		f.visible = false
	}

	if f.tmp != "" {
		if err := os.Remove(f.tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.opts.Log.Error(err, "cannot remove temporary file", "path", f.tmp)
		}
		f.tmp = ""
	}
	if f.backup != "" {
		if err := os.Remove(f.backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.opts.Log.Error(err, "cannot remove backup", "path", f.backup)
		}
		f.backup = ""
	}
	f.prepared = false
	return nil
}

func modeFromStat(raw uint32) os.FileMode {
	mode := os.FileMode(raw & 0o777)
	if raw&unix.S_ISUID != 0 {
		mode |= os.ModeSetuid
	}
	if raw&unix.S_ISGID != 0 {
		mode |= os.ModeSetgid
	}
	if raw&unix.S_ISVTX != 0 {
		mode |= os.ModeSticky
	}
	return mode
}
