//go:build linux

package dialog

import "golang.org/x/sys/unix"

// dup2 uses dup3 because some linux ports have no dup2 syscall.
func dup2(oldfd, newfd int) error {
	if oldfd == newfd {
		return nil
	}
	return unix.Dup3(oldfd, newfd, 0)
}
