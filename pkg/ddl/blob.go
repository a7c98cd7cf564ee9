package ddl

import "strings"

// Blob accumulates the statements of one database in enumeration order.
// Statements are concatenated as-is; each carries its own trailing newline.
type Blob struct {
	b     strings.Builder
	count int
}

// Append adds stmt to the end of the blob.
func (b *Blob) Append(stmt string) {
	b.b.WriteString(stmt)
	b.count++
}

func (b *Blob) String() string {
	return b.b.String()
}

// Len returns the blob size in bytes.
func (b *Blob) Len() int {
	return b.b.Len()
}

// Count returns the number of statements appended.
func (b *Blob) Count() int {
	return b.count
}
