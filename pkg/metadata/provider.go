package metadata

import (
	"context"

	"github.com/arnkore/hive-ddl-extractor/pkg/parser"
)

// Catalog is the set of catalog queries the extractor consumes.
type Catalog interface {
	DatabaseExists(ctx context.Context, database string) (bool, error)
	ListTables(ctx context.Context, database string) ([]TableRef, error)
	ShowCreateTable(ctx context.Context, table TableRef) (string, error)
	DescribeFormatted(ctx context.Context, table TableRef) ([]parser.DescribeRow, error)
	ShowTableExtended(ctx context.Context, table TableRef) (string, error)
}
