package dialog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// fold builds a fresh Caser per call; a Caser is stateful and not safe to share.
func fold(s string) string {
	return cases.Fold().String(s)
}

// queryStringNote builds the text shown before a string query.
func queryStringNote(q StringQuery) string {
	note := q.Note
	if note == "" {
		note = fmt.Sprintf("\nPlease specify '%s'", q.Name)
		if len(q.ValidValues) > 0 {
			note += " (@VALUES@)"
		}
		if q.Default != "" {
			note += " [@DEFAULT@]"
		}
	}
	if len(q.ValidValues) > 0 {
		note = strings.ReplaceAll(note, "@VALUES@", strings.Join(q.ValidValues, ", "))
	}
	if q.Default != "" {
		note = strings.ReplaceAll(note, "@DEFAULT@", q.Default)
	}
	return note
}

// resolveAnswer applies the default and the valid-value restriction to a
// raw answer.
func resolveAnswer(q StringQuery, answer string) (string, error) {
	if answer == "" && q.Default != "" {
		answer = q.Default
	}

	if len(q.ValidValues) > 0 {
		for _, valid := range q.ValidValues {
			if valid == answer {
				return valid, nil
			}
			if q.CaseInsensitive && fold(valid) == fold(answer) {
				return valid, nil
			}
		}
		return "", invalidValue(q.Name)
	}

	if answer == "" {
		return "", invalidValue(q.Name)
	}
	return answer, nil
}

func invalidValue(name string) error {
	return kiterrors.NewValidationError(name, fmt.Sprintf("Invalid value provided to '%s'", name), nil)
}

// escapeValidValues joins values with '|' escaping '\' and '|'.
func escapeValidValues(values []string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `|`, `\|`)
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = escaper.Replace(v)
	}
	return strings.Join(escaped, "|")
}

// isYes reports whether answer confirms.
func isYes(answer string) bool {
	switch fold(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true
	}
	return false
}

func isNo(answer string) bool {
	switch fold(strings.TrimSpace(answer)) {
	case "no", "n":
		return true
	}
	return false
}
