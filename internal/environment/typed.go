package environment

import (
	"fmt"
	"strconv"
	"strings"
)

// Type names used by the "type:value" encoding.
const (
	TypeNone     = "none"
	TypeBool     = "bool"
	TypeInt      = "int"
	TypeString   = "str"
	TypeMultiStr = "multi-str"
)

// TypeName returns the encoding type name of value.
func TypeName(value any) string {
	switch value.(type) {
	case nil:
		return TypeNone
	case bool:
		return TypeBool
	case int:
		return TypeInt
	case []string:
		return TypeMultiStr
	default:
		return TypeString
	}
}

// FormatTyped encodes value as "type:value".
func FormatTyped(value any) string {
	switch v := value.(type) {
	case nil:
		return TypeNone + ":"
	case bool:
		if v {
			return TypeBool + ":True"
		}
		return TypeBool + ":False"
	case int:
		return TypeInt + ":" + strconv.Itoa(v)
	case []string:
		escaped := make([]string, len(v))
		for i, item := range v {
			escaped[i] = escapeItem(item)
		}
		return TypeMultiStr + ":" + strings.Join(escaped, ",")
	case string:
		return TypeString + ":" + v
	default:
		return TypeString + ":" + fmt.Sprint(v)
	}
}

// ParseTyped decodes a "type:value" string back into its typed value.
func ParseTyped(encoded string) (any, error) {
	kind, raw, ok := strings.Cut(encoded, ":")
	if !ok {
		return nil, fmt.Errorf("typed value %q is missing the type prefix", encoded)
	}

	switch kind {
	case TypeNone:
		return nil, nil
	case TypeBool:
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return nil, fmt.Errorf("invalid bool value %q", raw)
	case TypeInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid int value %q: %w", raw, err)
		}
		return n, nil
	case TypeString:
		return raw, nil
	case TypeMultiStr:
		return splitItems(raw), nil
	default:
		return nil, fmt.Errorf("unknown value type %q", kind)
	}
}

// emptyItem marks a present but empty item so that []string{""} and the
// empty list encode differently.
const emptyItem = `\0`

var itemEscaper = strings.NewReplacer(`\`, `\\`, `,`, `\,`, "\n", `\n`, "\r", `\r`)

func escapeItem(s string) string {
	if s == "" {
		return emptyItem
	}
	return itemEscaper.Replace(s)
}

func splitItems(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var (
		items   []string
		current strings.Builder
		escaped bool
	)
	for _, r := range raw {
		switch {
		case escaped:
			switch r {
			case '0':
			case 'n':
				current.WriteByte('\n')
			case 'r':
				current.WriteByte('\r')
			default:
				current.WriteRune(r)
			}
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			items = append(items, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(items, current.String())
}
