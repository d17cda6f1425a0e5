package dialog

import (
	"errors"

	"github.com/alexisbeaulieu97/installkit/internal/logger"
)

// ErrUnavailable is returned by queries made before any dialect is active.
var ErrUnavailable = errors.New("dialog is not available")

// Unavailable is the placeholder dialog used until a dialect registers.
// Notes and displays go to the log; queries fail.
type Unavailable struct {
	Log *logger.Logger
}

var _ Dialog = (*Unavailable)(nil)

func (u *Unavailable) Name() string { return "unavailable" }

func (u *Unavailable) Note(text string) error {
	u.Log.Info(text)
	return nil
}

func (u *Unavailable) QueryString(StringQuery) (string, error) { return "", ErrUnavailable }

func (u *Unavailable) QueryMultiString(string, string) ([]string, error) {
	return nil, ErrUnavailable
}

func (u *Unavailable) QueryValue(string, string) (any, error) { return nil, ErrUnavailable }

func (u *Unavailable) Confirm(string, string, string) (bool, error) { return false, ErrUnavailable }

func (u *Unavailable) DisplayValue(name string, value any, _ string) error {
	u.Log.Info("display value", "name", name, "value", value)
	return nil
}

func (u *Unavailable) DisplayMultiString(name string, value []string, _ string) error {
	u.Log.Info("display value", "name", name, "value", value)
	return nil
}

func (u *Unavailable) Terminate() error { return nil }
