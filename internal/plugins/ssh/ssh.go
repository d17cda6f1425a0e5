// Package sshplugin installs an SSH public key into a user's
// authorized_keys, touching the file as little as possible.
package sshplugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/filetx"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

var publicKeyPattern = regexp.MustCompile(
	`^\s*(?P<algo>ssh-rsa|ssh-dss|ssh-ed25519|ecdsa-sha2-[a-z0-9]+)\s+(?P<public>[A-Za-z0-9+/]+={0,3})(?P<alias>\s+\S+)?\s*$`,
)

type publicKey struct {
	algo   string
	public string
	alias  string
}

func parseKey(line string) (publicKey, bool) {
	m := publicKeyPattern.FindStringSubmatch(line)
	if m == nil {
		return publicKey{}, false
	}
	return publicKey{
		algo:   m[publicKeyPattern.SubexpIndex("algo")],
		public: m[publicKeyPattern.SubexpIndex("public")],
		alias:  strings.TrimSpace(m[publicKeyPattern.SubexpIndex("alias")]),
	}, true
}

// mergeAuthorizedKeys keeps one copy of key under its own alias, drops the
// same key under other aliases and drops other keys claiming our alias.
// Lines that are not keys are kept untouched.
func mergeAuthorizedKeys(lines []string, key publicKey) (merged []string, found bool) {
	for _, line := range lines {
		current, ok := parseKey(line)
		if !ok {
			merged = append(merged, line)
			continue
		}
		if current.algo == key.algo && current.public == key.public {
			if current.alias != key.alias || found {
				continue
			}
			found = true
		} else if key.alias != "" && current.alias == key.alias {
			continue
		}
		merged = append(merged, line)
	}
	return merged, found
}

type sshPlugin struct {
	lookup  func(name string) (*user.User, error)
	enabled bool
}

// New creates the authorized_keys installer.
func New() engine.Plugin {
	return &sshPlugin{lookup: lookupUser}
}

var _ engine.Plugin = (*sshPlugin)(nil)

func lookupUser(name string) (*user.User, error) {
	if name == "" {
		return user.Current()
	}
	return user.Lookup(name)
}

func (p *sshPlugin) Name() string { return "network.ssh" }

func (p *sshPlugin) Events() []engine.Event {
	return []engine.Event{
		{Name: "network.ssh.init", Stage: engine.StageInit, Handler: p.init},
		{
			Name:      "network.ssh.validation",
			Stage:     engine.StageValidation,
			Condition: func(env *environment.Environment) bool { return env.Bool(environment.SSHEnable, false) },
			Handler:   p.validate,
		},
		{
			Name:      "network.ssh.install",
			Stage:     engine.StageMisc,
			Condition: func(*environment.Environment) bool { return p.enabled },
			Handler:   p.install,
		},
	}
}

func (p *sshPlugin) init(_ context.Context, c *engine.Context) error {
	c.Env.SetDefault(environment.SSHEnable, false)
	c.Env.SetDefault(environment.SSHKey, "")
	c.Env.SetDefault(environment.SSHUser, "")
	return nil
}

func (p *sshPlugin) validate(_ context.Context, c *engine.Context) error {
	key := c.Env.String(environment.SSHKey, "")
	if key == "" {
		return nil
	}
	if _, ok := parseKey(key); !ok {
		return kiterrors.NewValidationError(environment.SSHKey, "SSH public key is invalid", nil)
	}
	p.enabled = true
	return nil
}

func (p *sshPlugin) install(_ context.Context, c *engine.Context) error {
	line := strings.TrimSpace(c.Env.String(environment.SSHKey, ""))
	key, _ := parseKey(line)

	name := c.Env.String(environment.SSHUser, "")
	u, err := p.lookup(name)
	if err != nil {
		return fmt.Errorf("lookup ssh user %q: %w", name, err)
	}
	path := filepath.Join(u.HomeDir, ".ssh", "authorized_keys")

	var content []string
	found := false
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return kiterrors.NewIOError("read", path, err)
	default:
		if existing := strings.TrimRight(string(data), "\n"); existing != "" {
			content, found = mergeAuthorizedKeys(strings.Split(existing, "\n"), key)
		}
	}
	if !found {
		content = append(content, line)
	}

	modified, _ := c.Env.Get(environment.ModifiedFiles, nil).(*filetx.ModifiedList)
	c.Log.Debug("installing ssh key", "path", path, "user", u.Username, "already_present", found)
	return c.Transaction().Append(filetx.New(path, []byte(strings.Join(content, "\n")+"\n"), filetx.Options{
		Mode:               0o600,
		Owner:              u.Uid,
		Group:              u.Gid,
		DirMode:            0o700,
		DirOwner:           u.Uid,
		DirGroup:           u.Gid,
		EnforcePermissions: true,
		Modified:           modified,
		Restorer:           filetx.NewRestorecon(c.Runner(), c.Log),
		Log:                c.Log,
	}))
}
