package partition

import (
	"strings"

	"github.com/arnkore/hive-ddl-extractor/pkg/utils"
)

// Column is one typed partition column. Name is unquoted.
type Column struct {
	Name string
	Type string
}

// String renders "name type", backtick quoting names that are not plain identifiers.
func (c Column) String() string {
	name := c.Name
	if !utils.IsPlainIdentifier(name) {
		name = utils.QuoteIdentifier(name)
	}
	return name + " " + c.Type
}

// Spec is the ordered list of partition columns as declared in PARTITIONED BY.
// Order matters: it drives directory layout and partition pruning downstream.
type Spec []Column

// String serializes the spec as comma separated "name type" pairs.
func (s Spec) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// Clause renders the PARTITIONED BY clause, or "" for a non-partitioned table.
func (s Spec) Clause() string {
	if len(s) == 0 {
		return ""
	}
	return "PARTITIONED BY (" + s.String() + ")"
}

// Names returns the column names in declaration order.
func (s Spec) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// IsEmpty reports whether the table is non-partitioned.
func (s Spec) IsEmpty() bool {
	return len(s) == 0
}
