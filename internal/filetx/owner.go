package filetx

import (
	"errors"
	"fmt"
	"os/user"
	"strconv"
)

// unchanged tells chown to leave an id as it is.
const unchanged = -1

// lookupOwner resolves an owner and group pair to ids. An empty group falls
// back to the owner's primary group so a file handed to a user does not keep
// the installer's group.
func lookupOwner(owner, group string) (uid, gid int, err error) {
	uid, primary, err := lookupUser(owner)
	if err != nil {
		return unchanged, unchanged, err
	}
	if group == "" {
		return uid, primary, nil
	}
	gid, err = lookupGID(group)
	if err != nil {
		return unchanged, unchanged, err
	}
	return uid, gid, nil
}

// lookupUser returns the uid and primary gid of name. A numeric uid with no
// passwd entry keeps its gid unchanged.
func lookupUser(name string) (uid, gid int, err error) {
	if name == "" {
		return unchanged, unchanged, nil
	}
	if id, convErr := strconv.Atoi(name); convErr == nil {
		u, err := user.LookupId(name)
		var unknown user.UnknownUserIdError
		if errors.As(err, &unknown) {
			return id, unchanged, nil
		}
		if err != nil {
			return unchanged, unchanged, fmt.Errorf("lookup uid %s: %w", name, err)
		}
		return id, primaryGID(u), nil
	}
	u, err := user.Lookup(name)
	if err != nil {
		return unchanged, unchanged, fmt.Errorf("lookup user %s: %w", name, err)
	}
	id, err := strconv.Atoi(u.Uid)
	if err != nil {
		return unchanged, unchanged, fmt.Errorf("user %s has non-numeric uid %q", name, u.Uid)
	}
	return id, primaryGID(u), nil
}

func primaryGID(u *user.User) int {
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return unchanged
	}
	return gid
}

func lookupGID(name string) (int, error) {
	if name == "" {
		return unchanged, nil
	}
	if id, err := strconv.Atoi(name); err == nil {
		return id, nil
	}
	g, err := user.LookupGroup(name)
	if err != nil {
		return unchanged, fmt.Errorf("lookup group %s: %w", name, err)
	}
	return strconv.Atoi(g.Gid)
}
