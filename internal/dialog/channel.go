package dialog

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Channel moves the process standard handles aside so stray output from
// child processes lands in the log, and hands the original terminal or pipe
// to the dialog.
type Channel struct {
	In  *os.File
	Out *os.File

	saved [3]int
	once  sync.Once
	err   error
}

// OpenChannel duplicates fds 0-2 aside, points stdin at /dev/null and
// stdout/stderr at sink (or /dev/null when sink is nil), and returns dialog
// streams bound to the original handles.
func OpenChannel(sink *os.File) (_ *Channel, err error) {
	_ = os.Stdout.Sync()
	_ = os.Stderr.Sync()

	c := &Channel{saved: [3]int{-1, -1, -1}}
	defer func() {
		if err != nil {
			c.restore()
		}
	}()

	for i := range c.saved {
		fd, err := unix.Dup(i)
		if err != nil {
			return nil, fmt.Errorf("dup fd %d: %w", i, err)
		}
		unix.CloseOnExec(fd)
		c.saved[i] = fd
	}

	null, err := unix.Open(os.DevNull, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer unix.Close(null)

	if err := dup2(null, 0); err != nil {
		return nil, fmt.Errorf("redirect stdin: %w", err)
	}
	target := null
	if sink != nil {
		target = int(sink.Fd())
	}
	for i := 1; i < 3; i++ {
		if err := dup2(target, i); err != nil {
			return nil, fmt.Errorf("redirect fd %d: %w", i, err)
		}
	}

	inFd, err := unix.Dup(c.saved[0])
	if err != nil {
		return nil, fmt.Errorf("dup dialog input: %w", err)
	}
	outFd, err := unix.Dup(c.saved[1])
	if err != nil {
		unix.Close(inFd)
		return nil, fmt.Errorf("dup dialog output: %w", err)
	}
	unix.CloseOnExec(inFd)
	unix.CloseOnExec(outFd)
	c.In = os.NewFile(uintptr(inFd), "dialog-input")
	c.Out = os.NewFile(uintptr(outFd), "dialog-output")
	return c, nil
}

// Close closes the dialog streams and puts the original handles back.
// Later calls return the first result.
func (c *Channel) Close() error {
	c.once.Do(func() {
		var errs []error
		if c.In != nil {
			errs = append(errs, c.In.Close())
			c.In = nil
		}
		if c.Out != nil {
			errs = append(errs, c.Out.Close())
			c.Out = nil
		}
		errs = append(errs, c.restore())
		c.err = errors.Join(errs...)
	})
	return c.err
}

func (c *Channel) restore() error {
	_ = os.Stdout.Sync()
	_ = os.Stderr.Sync()

	var errs []error
	for i, fd := range c.saved {
		if fd < 0 {
			continue
		}
		if err := dup2(fd, i); err != nil {
			errs = append(errs, fmt.Errorf("restore fd %d: %w", i, err))
		}
		unix.Close(fd)
		c.saved[i] = -1
	}
	return errors.Join(errs...)
}
