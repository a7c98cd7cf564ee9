package parser

import (
	"strings"

	"github.com/arnkore/hive-ddl-extractor/pkg/common"
)

const (
	DatabaseLabel = "Database"
	TableLabel    = "Table"
	LocationLabel = "Location"
	ProviderLabel = "Provider"

	LocationMarker    = "Location: "
	UsingMarker       = "USING "
	PartitionedMarker = "PARTITIONED BY ("

	detailedSectionHeader = "# Detailed Table Information"
)

// DescribeRow is one row of DESCRIBE FORMATTED output.
type DescribeRow struct {
	ColName  string
	DataType string
	Comment  string
}

// ColumnTypeIndex maps a normalized column name to its declared type.
type ColumnTypeIndex map[string]string

// BuildColumnTypeIndex collects the column rows that precede the detailed table
// section, partition information included. Section headers and blank separator
// rows are skipped; the first declaration of a column wins.
func BuildColumnTypeIndex(rows []DescribeRow) ColumnTypeIndex {
	index := make(ColumnTypeIndex)
	for _, row := range rows {
		name := strings.TrimSpace(row.ColName)
		if name == detailedSectionHeader {
			break
		}
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		key := normalizeColumn(name)
		if _, ok := index[key]; !ok {
			index[key] = strings.TrimSpace(row.DataType)
		}
	}
	return index
}

// Lookup returns the declared type of column, ignoring case and backticks.
func (idx ColumnTypeIndex) Lookup(column string) (string, bool) {
	t, ok := idx[normalizeColumn(column)]
	return t, ok
}

// ExtractDescribeValue returns the value column of the row labelled label.
// When the output carries a detailed table section only that section is searched.
func ExtractDescribeValue(rows []DescribeRow, label string) (string, bool) {
	for _, row := range detailedSection(rows) {
		if normalizeLabel(row.ColName) != label {
			continue
		}
		v := strings.TrimSpace(row.DataType)
		return v, v != ""
	}
	return "", false
}

// ExtractDatabaseName returns the value of the Database row.
func ExtractDatabaseName(rows []DescribeRow) (string, error) {
	return extractLabelled(rows, DatabaseLabel)
}

// ExtractTableName returns the value of the Table row.
func ExtractTableName(rows []DescribeRow) (string, error) {
	return extractLabelled(rows, TableLabel)
}

// ExtractRawLocation returns the source location from SHOW TABLE EXTENDED information.
func ExtractRawLocation(extendedInfo string) (string, error) {
	v, ok := NewScanner(extendedInfo).ValueAfter(LocationMarker)
	if !ok || v == "" {
		return "", &common.MalformedCatalogOutputError{Marker: LocationMarker, Source: "SHOW TABLE EXTENDED"}
	}
	return v, nil
}

// ExtractStorageFormat returns the data source named by the USING clause.
// Tables created with Hive syntax carry no USING clause and fail here.
func ExtractStorageFormat(createStmt string) (string, error) {
	v, ok := NewScanner(createStmt).ValueAfter(UsingMarker)
	if !ok || v == "" {
		return "", &common.MalformedCatalogOutputError{Marker: UsingMarker, Source: "SHOW CREATE TABLE"}
	}
	return v, nil
}

func extractLabelled(rows []DescribeRow, label string) (string, error) {
	v, ok := ExtractDescribeValue(rows, label)
	if !ok {
		return "", &common.MissingFieldError{Field: label}
	}
	return v, nil
}

func detailedSection(rows []DescribeRow) []DescribeRow {
	for i, row := range rows {
		if strings.TrimSpace(row.ColName) == detailedSectionHeader {
			return rows[i+1:]
		}
	}
	return rows
}

func normalizeLabel(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ":")
}

func normalizeColumn(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), "`"))
}
