package parser

import (
	"bufio"
	"strings"
)

// maxLineSize bounds a single line of catalog output. SHOW CREATE TABLE can emit
// very long TBLPROPERTIES lines, well past bufio's 64KiB default.
const maxLineSize = 16 * 1024 * 1024

// Scanner walks loosely structured catalog text line by line.
type Scanner struct {
	text string
}

// NewScanner creates a Scanner over text.
func NewScanner(text string) *Scanner {
	return &Scanner{text: text}
}

// Lines returns the text split into lines with line terminators removed.
// Text with a line longer than maxLineSize is split without the scanner.
func (s *Scanner) Lines() []string {
	sc := bufio.NewScanner(strings.NewReader(s.text))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if sc.Err() != nil {
		return splitLines(s.text)
	}
	return lines
}

func splitLines(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ValueAfter returns the rest of the line following marker. A line that starts
// with marker wins over one that merely contains it. Occurrences inside a
// quoted run, such as a column comment, are never matched.
func (s *Scanner) ValueAfter(marker string) (string, bool) {
	lines := s.Lines()
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, marker) {
			return cleanValue(trimmed[len(marker):]), true
		}
	}
	for _, line := range lines {
		if i := IndexUnquotedString(line, 0, marker); i >= 0 {
			return cleanValue(line[i+len(marker):]), true
		}
	}
	return "", false
}

func cleanValue(v string) string {
	return strings.TrimRight(v, " \t\r")
}
