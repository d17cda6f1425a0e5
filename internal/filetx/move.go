package filetx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// Mover makes src appear at dst and removes src.
type Mover func(src, dst string) error

var (
	moverMu         sync.RWMutex
	registeredMover Mover = AtomicMove
)

// RegisterMover replaces the process-wide move policy and returns a function
// restoring the previous one.
func RegisterMover(m Mover) (restore func()) {
	moverMu.Lock()
	defer moverMu.Unlock()

	previous := registeredMover
	registeredMover = m
	return func() {
		moverMu.Lock()
		defer moverMu.Unlock()
		registeredMover = previous
	}
}

func currentMover() Mover {
	moverMu.RLock()
	defer moverMu.RUnlock()
	return registeredMover
}

// AtomicMove renames src over dst when both live on the same device and
// falls back to copy then unlink otherwise. When dst does not exist its
// parent directory decides the device.
func AtomicMove(src, dst string) error {
	return moveWith(sameDevice, src, dst)
}

func moveWith(sameDev func(src, dst string) (bool, error), src, dst string) error {
	same, err := sameDev(src, dst)
	if err != nil {
		return err
	}
	if same {
		if err := os.Rename(src, dst); err != nil {
			return err
		}
		return syncDir(filepath.Dir(dst))
	}
	return copyThenUnlink(src, dst)
}

func sameDevice(src, dst string) (bool, error) {
	var srcStat, dstStat unix.Stat_t
	if err := unix.Stat(src, &srcStat); err != nil {
		return false, &os.PathError{Op: "stat", Path: src, Err: err}
	}

	err := unix.Stat(dst, &dstStat)
	if errors.Is(err, unix.ENOENT) {
		parent := filepath.Dir(dst)
		if err = unix.Stat(parent, &dstStat); err != nil {
			return false, &os.PathError{Op: "stat", Path: parent, Err: err}
		}
	} else if err != nil {
		return false, &os.PathError{Op: "stat", Path: dst, Err: err}
	}

	return srcStat.Dev == dstStat.Dev, nil
}

// copyThenUnlink is the cross-device path: not atomic, a reader may observe
// a partially written dst.
func copyThenUnlink(src, dst string) error {
	if err := copyFile(src, dst, true); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return nil
}

// copyFile copies content and permission bits. With preserveOwner it also
// copies ownership and timestamps.
func copyFile(src, dst string, preserveOwner bool) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Chmod(info.Mode() & (os.ModePerm | os.ModeSetuid | os.ModeSetgid | os.ModeSticky)); err != nil {
		out.Close()
		return err
	}
	if preserveOwner {
		var st unix.Stat_t
		if err := unix.Stat(src, &st); err == nil {
			_ = out.Chown(int(st.Uid), int(st.Gid))
		}
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if preserveOwner {
		_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	}
	return nil
}

func syncDir(dir string) error {
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return &os.PathError{Op: "open", Path: dir, Err: err}
	}
	defer unix.Close(fd)

	if err := unix.Fsync(fd); err != nil && !errors.Is(err, unix.EINVAL) {
		return &os.PathError{Op: "fsync", Path: dir, Err: err}
	}
	return nil
}
