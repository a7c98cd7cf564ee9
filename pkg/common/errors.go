package common

import (
	"errors"
	"fmt"
)

// ErrDatabaseNotFound is returned when the catalog does not know the requested database.
var ErrDatabaseNotFound = errors.New("database not found in catalog")

// MissingFieldError reports a labelled row absent from the formatted describe output.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q in describe output", e.Field)
}

// MalformedCatalogOutputError reports a marker literal that could not be found.
type MalformedCatalogOutputError struct {
	Marker string
	Source string
}

func (e *MalformedCatalogOutputError) Error() string {
	return fmt.Sprintf("malformed %s output: marker %q not found", e.Source, e.Marker)
}

// UnknownPartitionColumnError reports a partition column with no declared type.
type UnknownPartitionColumnError struct {
	Column string
}

func (e *UnknownPartitionColumnError) Error() string {
	return fmt.Sprintf("partition column %q has no type in describe output", e.Column)
}

// UnsupportedLocationSchemeError reports a source location that cannot be rewritten.
type UnsupportedLocationSchemeError struct {
	Location string
	Scheme   string
}

func (e *UnsupportedLocationSchemeError) Error() string {
	if e.Scheme == "" {
		return fmt.Sprintf("unsupported location %q: expected scheme://authority/path", e.Location)
	}
	return fmt.Sprintf("unsupported location %q: expected %s:// scheme", e.Location, e.Scheme)
}

// TableError attaches the offending table to a per-table extraction error.
type TableError struct {
	Table string
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("table %s: %v", e.Table, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err belongs to the per-table parsing taxonomy.
func IsParseError(err error) bool {
	var (
		missing   *MissingFieldError
		malformed *MalformedCatalogOutputError
		unknown   *UnknownPartitionColumnError
		scheme    *UnsupportedLocationSchemeError
	)
	return errors.As(err, &missing) ||
		errors.As(err, &malformed) ||
		errors.As(err, &unknown) ||
		errors.As(err, &scheme)
}
