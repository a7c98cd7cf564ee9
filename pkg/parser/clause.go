package parser

import "strings"

// BalancedSpan returns the text strictly between the '(' at index open and its
// matching ')', plus the index of that ')'. Parentheses inside backtick, single
// or double quoted runs are ignored.
func BalancedSpan(text string, open int) (string, int, bool) {
	if open < 0 || open >= len(text) || text[open] != '(' {
		return "", -1, false
	}
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '`', '\'', '"':
			i = skipQuoted(text, i)
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[open+1 : i], i, true
			}
		}
	}
	return "", -1, false
}

// IndexUnquoted returns the index of the first c at or after from that is not
// inside a quoted run, or -1.
func IndexUnquoted(text string, from int, c byte) int {
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '`', '\'', '"':
			i = skipQuoted(text, i)
		case c:
			return i
		}
	}
	return -1
}

// IndexUnquotedString returns the index of the first occurrence of substr at or
// after from that does not start inside a quoted run, or -1.
func IndexUnquotedString(text string, from int, substr string) int {
	for i := from; i < len(text); i++ {
		if strings.HasPrefix(text[i:], substr) {
			return i
		}
		switch text[i] {
		case '`', '\'', '"':
			i = skipQuoted(text, i)
		}
	}
	return -1
}

// SplitTopLevel splits s on commas that are not nested in (), <> or quotes.
// Entries are whitespace trimmed and empty entries dropped.
func SplitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '`', '\'', '"':
			i = skipQuoted(s, i)
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		case ',':
			if depth == 0 {
				parts = appendTrimmed(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return appendTrimmed(parts, s[start:])
}

// LeadingIdentifier returns the first identifier of a column definition with
// any backtick quoting removed.
func LeadingIdentifier(def string) string {
	def = strings.TrimSpace(def)
	if def == "" {
		return ""
	}
	if def[0] == '`' {
		end := skipQuoted(def, 0)
		if end >= len(def) {
			return strings.ReplaceAll(def[1:], "``", "`")
		}
		return strings.ReplaceAll(def[1:end], "``", "`")
	}
	if i := strings.IndexAny(def, " \t\r\n"); i >= 0 {
		return def[:i]
	}
	return def
}

// skipQuoted returns the index of the quote closing the run opened at start.
// Backslash escapes are honoured for ' and ", doubled backticks for `.
func skipQuoted(s string, start int) int {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		switch {
		case q != '`' && s[i] == '\\':
			i++
		case s[i] == q:
			if q == '`' && i+1 < len(s) && s[i+1] == '`' {
				i++
				continue
			}
			return i
		}
	}
	return len(s)
}

func appendTrimmed(parts []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		parts = append(parts, s)
	}
	return parts
}

// Balanced reports whether every unquoted '(' in text has a matching ')'.
func Balanced(text string) bool {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '`', '\'', '"':
			i = skipQuoted(text, i)
		case '(':
			depth++
		case ')':
			if depth--; depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
