package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Entry is a single key/value pair parsed from an environment file.
type Entry struct {
	Key   string
	Value string
}

// definitionRe matches one variable definition: an optional shell-style
// "export " prefix, an identifier key, and everything after the first '='.
var definitionRe = regexp.MustCompile(`^(?:export\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*=(.*)$`)

// Parse reads variable definitions from r, one per line. Blank lines and
// lines starting with '#' are ignored. Malformed lines (no '=' separator,
// or a key that is not a valid identifier) are skipped and parsing
// continues; the returned error covers reader failure only.
//
// When the same key appears on multiple lines the last occurrence wins,
// while the returned slice keeps the first-seen order of keys.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	index := make(map[string]int)
	resolved := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		matches := definitionRe.FindStringSubmatch(line)
		if matches == nil {
			continue
		}
		key := matches[1]
		value := parseValue(matches[2], resolved)

		resolved[key] = value
		if i, ok := index[key]; ok {
			entries[i].Value = value
			continue
		}
		index[key] = len(entries)
		entries = append(entries, Entry{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseFile opens path and parses its contents. The open error is returned
// unwrapped so callers can distinguish a missing file from an unreadable one
// with os.IsNotExist.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, nil
}

// parseValue turns the raw right-hand side of a definition into its final
// value. Single quotes keep the content verbatim. Double quotes get escape
// interpretation and variable expansion. Unquoted values are trimmed, lose
// any trailing ' #' comment, and are expanded. Anything following a closing
// quote is ignored, which covers trailing comments on quoted values.
func parseValue(raw string, vars map[string]string) string {
	value := strings.TrimSpace(raw)
	if len(value) >= 2 {
		switch value[0] {
		case '\'':
			if end := strings.IndexByte(value[1:], '\''); end >= 0 {
				return value[1 : end+1]
			}
		case '"':
			if end := closingQuote(value); end > 0 {
				return unescape(expand(value[1:end], vars))
			}
		}
	}

	// A comment on an unquoted value starts at whitespace followed by '#'.
	// A bare '#' inside the value is part of the value.
	if i := strings.Index(value, " #"); i >= 0 {
		value = strings.TrimRight(value[:i], " \t")
	}
	return expand(value, vars)
}

// closingQuote returns the index of the closing double quote in s, honoring
// backslash escapes, or -1 when the quote is unterminated.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// unescape interprets backslash escape sequences inside a double-quoted
// value. Unknown sequences are kept verbatim, backslash included.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"', '\\', '$', '\'':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
