package storage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/arnkore/hive-ddl-extractor/pkg/batch"
)

// Persistence names the sinks of one run. Rows may be nil to skip metadata.
type Persistence struct {
	Blobs      BlobWriter
	BlobPrefix string
	Rows       RowAppender
	RowTarget  string
}

// Persist writes the DDL blob and appends the metadata rows concurrently.
// Either failure fails the run; nothing is retried.
func Persist(ctx context.Context, p Persistence, result *batch.Result) (string, error) {
	if p.Blobs == nil {
		return "", fmt.Errorf("no blob writer configured")
	}
	prefix := p.BlobPrefix
	if prefix == "" {
		prefix = DefaultDDLPrefix
	}

	var object string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, err := p.Blobs.WriteBlob(gctx, result.DDL, prefix)
		if err != nil {
			return fmt.Errorf("failed to write DDL: %w", err)
		}
		object = name
		return nil
	})
	if p.Rows != nil {
		g.Go(func() error {
			if err := p.Rows.AppendRows(gctx, result.Records, p.RowTarget); err != nil {
				return fmt.Errorf("failed to append metadata: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return object, nil
}
