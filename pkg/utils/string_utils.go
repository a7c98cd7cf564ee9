package utils

import (
	"hash/crc32"
	"strings"
)

// QuoteIdentifier wraps name in backticks, doubling any embedded backtick.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// IsPlainIdentifier reports whether name can be written without quoting:
// a letter or underscore followed by letters, digits or underscores.
func IsPlainIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// QualifiedName returns `database`.`table`.
func QualifiedName(database, table string) string {
	return QuoteIdentifier(database) + "." + QuoteIdentifier(table)
}

// QuoteLiteral wraps s in single quotes for use in a LIKE pattern or string literal.
func QuoteLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// Fingerprint returns the CRC32 (IEEE) of a reconstructed statement. It lets
// consecutive runs detect DDL drift without storing full statements twice.
func Fingerprint(stmt string) uint32 {
	return crc32.ChecksumIEEE([]byte(stmt))
}
