package ddl

import (
	"fmt"
	"strings"

	"github.com/arnkore/hive-ddl-extractor/pkg/parser"
)

const createPrefix = "CREATE TABLE IF NOT EXISTS "

// Compose assembles a CREATE TABLE statement. firstPart is the parenthesised
// column list and partitionClause is either empty or a PARTITIONED BY clause.
// The result is always terminated by ";\n".
func Compose(table, firstPart, partitionClause string) string {
	var b strings.Builder
	b.Grow(len(createPrefix) + len(table) + len(firstPart) + len(partitionClause) + 3)
	b.WriteString(createPrefix)
	b.WriteString(table)
	b.WriteString(firstPart)
	if partitionClause != "" {
		b.WriteByte('\n')
		b.WriteString(partitionClause)
	}
	b.WriteString(";\n")
	return b.String()
}

// Validate checks that stmt is a terminated CREATE statement whose parentheses balance.
func Validate(stmt string) error {
	if !strings.HasPrefix(stmt, createPrefix) {
		return fmt.Errorf("statement does not start with %q", createPrefix)
	}
	if !strings.HasSuffix(stmt, ";\n") {
		return fmt.Errorf("statement is not terminated by a semicolon and newline")
	}
	if !parser.Balanced(stmt) {
		return fmt.Errorf("statement has unbalanced parentheses")
	}
	return nil
}
