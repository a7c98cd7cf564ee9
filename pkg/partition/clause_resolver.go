package partition

import (
	"strings"

	"github.com/arnkore/hive-ddl-extractor/pkg/common"
	"github.com/arnkore/hive-ddl-extractor/pkg/parser"
)

const (
	partitionedKeyword = "PARTITIONED"
	createSource       = "SHOW CREATE TABLE"
)

// Resolution is the outcome of resolving one CREATE statement.
type Resolution struct {
	// FirstPart is the parenthesised column list, partition columns removed.
	FirstPart string
	Spec      Spec
}

// ClauseResolver rebuilds the column list and typed partition clause of a table
// from its SHOW CREATE TABLE text.
type ClauseResolver struct {
	TableName       string
	CreateStatement string
}

// NewClauseResolver creates a new ClauseResolver.
func NewClauseResolver(tableName, createStatement string) *ClauseResolver {
	return &ClauseResolver{
		TableName:       tableName,
		CreateStatement: createStatement,
	}
}

// Resolve looks up every partition column in index and returns the full spec,
// or fails the whole table. A partially typed clause is never returned.
func (r *ClauseResolver) Resolve(index parser.ColumnTypeIndex) (*Resolution, error) {
	body, end, err := r.columnList()
	if err != nil {
		return nil, err
	}
	defs := parser.SplitTopLevel(body)

	rest := r.CreateStatement[end+1:]
	if parser.IndexUnquotedString(rest, 0, partitionedKeyword) < 0 {
		if len(defs) == 0 {
			return nil, malformed("column definition")
		}
		return &Resolution{FirstPart: renderColumnList(defs)}, nil
	}

	names, err := partitionColumnNames(rest)
	if err != nil {
		return nil, err
	}

	spec := make(Spec, 0, len(names))
	for _, name := range names {
		typ, ok := index.Lookup(name)
		if !ok {
			return nil, &common.UnknownPartitionColumnError{Column: name}
		}
		spec = append(spec, Column{Name: name, Type: typ})
	}

	remaining := withoutColumns(defs, names)
	if len(remaining) == 0 {
		return nil, malformed("column definition")
	}
	return &Resolution{FirstPart: renderColumnList(remaining), Spec: spec}, nil
}

// columnList returns the body of the column list and the index of its closing paren.
func (r *ClauseResolver) columnList() (string, int, error) {
	stmt := r.CreateStatement
	open := parser.IndexUnquoted(stmt, 0, '(')
	if open < 0 {
		return "", -1, malformed("(")
	}
	if r.TableName != "" && !strings.Contains(strings.ToLower(stmt[:open]), strings.ToLower(r.TableName)) {
		return "", -1, malformed(r.TableName)
	}
	body, end, ok := parser.BalancedSpan(stmt, open)
	if !ok {
		return "", -1, malformed(")")
	}
	return body, end, nil
}

func partitionColumnNames(rest string) ([]string, error) {
	i := parser.IndexUnquotedString(rest, 0, parser.PartitionedMarker)
	if i < 0 {
		return nil, malformed(parser.PartitionedMarker)
	}
	span, _, ok := parser.BalancedSpan(rest, i+len(parser.PartitionedMarker)-1)
	if !ok {
		return nil, malformed(")")
	}

	entries := parser.SplitTopLevel(span)
	if len(entries) == 0 {
		return nil, malformed("partition column")
	}
	names := make([]string, len(entries))
	for j, entry := range entries {
		names[j] = parser.LeadingIdentifier(entry)
	}
	return names, nil
}

func withoutColumns(defs []string, drop []string) []string {
	dropped := make(map[string]struct{}, len(drop))
	for _, name := range drop {
		dropped[strings.ToLower(name)] = struct{}{}
	}
	kept := make([]string, 0, len(defs))
	for _, def := range defs {
		if _, ok := dropped[strings.ToLower(parser.LeadingIdentifier(def))]; ok {
			continue
		}
		kept = append(kept, def)
	}
	return kept
}

func renderColumnList(defs []string) string {
	return " (\n  " + strings.Join(defs, ",\n  ") + ")"
}

func malformed(marker string) error {
	return &common.MalformedCatalogOutputError{Marker: marker, Source: createSource}
}
