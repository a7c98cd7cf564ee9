package storage

import (
	"context"
	"time"

	"github.com/arnkore/hive-ddl-extractor/pkg/metadata"
)

const (
	// DefaultDDLPrefix is prepended to the timestamp to name the DDL object.
	DefaultDDLPrefix = "SparkDDL/DDL"
	// TimestampLayout renders MM-DD-YYYY HH.MM.SS.
	TimestampLayout = "01-02-2006 15.04.05"
)

// BlobWriter uploads the concatenated DDL text and returns the object name it used.
type BlobWriter interface {
	WriteBlob(ctx context.Context, content, prefix string) (string, error)
}

// RowAppender appends metadata records to a tabular target.
type RowAppender interface {
	AppendRows(ctx context.Context, records []metadata.MetadataRecord, target string) error
}

// Clock returns the current time. Writers take one so object names are testable.
type Clock func() time.Time

// ObjectName joins prefix and the formatted time with no separator.
func ObjectName(prefix string, t time.Time) string {
	return prefix + t.Format(TimestampLayout)
}
