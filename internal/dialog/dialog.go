// Package dialog asks for and displays values, either to a person at a
// terminal or to a controlling program speaking the machine protocol.
package dialog

// StringQuery describes a single-line question.
type StringQuery struct {
	Name string
	// Note replaces the default text. @VALUES@ and @DEFAULT@ are substituted.
	Note        string
	ValidValues []string
	// CaseInsensitive matches ValidValues ignoring case and returns the
	// canonical entry.
	CaseInsensitive bool
	Hidden          bool
	// Prompt keeps the answer on the same line as the note when possible.
	Prompt bool
	// Default is used for an empty answer. Empty means no default.
	Default string
}

// Dialog is implemented by every dialect.
type Dialog interface {
	Name() string
	Note(text string) error
	QueryString(q StringQuery) (string, error)
	QueryMultiString(name, note string) ([]string, error)
	QueryValue(name, note string) (any, error)
	Confirm(name, description, note string) (bool, error)
	DisplayValue(name string, value any, note string) error
	DisplayMultiString(name string, value []string, note string) error
	Terminate() error
}

// Boundary markers shared by both dialects.
const (
	Boundary      = "--=451b80dc-996f-432e-9e4f-2b29ef6d1141=--"
	AbortBoundary = "--=451b80dc-996f-ABORT-9e4f-2b29ef6d1141=--"
)
