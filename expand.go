package envfile

import (
	"os"
	"strings"
)

// expand substitutes ${VAR} and $VAR references in s. Entries parsed earlier
// in the same file take precedence over the process environment. Unresolved
// references expand to the empty string. A backslash before '$' suppresses
// expansion and is left in place for unescape to collapse.
func expand(s string, vars map[string]string) string {
	if !strings.ContainsRune(s, '$') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == '$' {
			b.WriteString(`\$`)
			i++
			continue
		}
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		name, width := refAt(s[i+1:])
		if width == 0 {
			b.WriteByte('$')
			continue
		}
		i += width
		if v, ok := vars[name]; ok {
			b.WriteString(v)
		} else if v, ok := os.LookupEnv(name); ok {
			b.WriteString(v)
		}
	}
	return b.String()
}

// refAt reports the variable name starting at s (just past a '$') and how
// many bytes the reference consumes, braces included. width 0 means no
// valid reference, leaving the '$' literal.
func refAt(s string) (name string, width int) {
	if s == "" {
		return "", 0
	}
	if s[0] == '{' {
		end := strings.IndexByte(s, '}')
		if end > 1 && isName(s[1:end]) {
			return s[1:end], end + 1
		}
		return "", 0
	}
	n := 0
	for n < len(s) && isNameByte(s[n], n == 0) {
		n++
	}
	return s[:n], n
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i], i == 0) {
			return false
		}
	}
	return true
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}
