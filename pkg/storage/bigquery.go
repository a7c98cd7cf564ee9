package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/arnkore/hive-ddl-extractor/pkg/metadata"
)

// DefaultBigQueryTable is the table name the metadata rows are appended to.
const DefaultBigQueryTable = "metadata"

// MetadataSchema is the all-string schema of the metadata table.
var MetadataSchema = bigquery.Schema(lo.Map(metadata.MetadataColumns, func(name string, _ int) *bigquery.FieldSchema {
	return &bigquery.FieldSchema{Name: name, Type: bigquery.StringFieldType}
}))

// metadataRow adapts a MetadataRecord to bigquery.ValueSaver.
type metadataRow metadata.MetadataRecord

func (r metadataRow) Save() (map[string]bigquery.Value, string, error) {
	values := metadata.MetadataRecord(r).Values()
	row := make(map[string]bigquery.Value, len(values))
	for i, column := range metadata.MetadataColumns {
		row[column] = values[i]
	}
	return row, "", nil
}

// BigQueryAppender appends metadata rows to a table in one dataset.
type BigQueryAppender struct {
	client  *bigquery.Client
	dataset string
}

// NewBigQueryAppender creates a client for project writing into dataset.
func NewBigQueryAppender(ctx context.Context, project, dataset string, opts ...option.ClientOption) (*BigQueryAppender, error) {
	client, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	return &BigQueryAppender{client: client, dataset: dataset}, nil
}

// AppendRows creates target with MetadataSchema if needed, then streams records into it.
func (a *BigQueryAppender) AppendRows(ctx context.Context, records []metadata.MetadataRecord, target string) error {
	if len(records) == 0 {
		return nil
	}
	if target == "" {
		target = DefaultBigQueryTable
	}
	table := a.client.Dataset(a.dataset).Table(target)
	if err := ensureTable(ctx, table); err != nil {
		return fmt.Errorf("failed to prepare %s.%s: %w", a.dataset, target, err)
	}

	rows := lo.Map(records, func(r metadata.MetadataRecord, _ int) metadataRow { return metadataRow(r) })
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("failed to append metadata to %s.%s: %w", a.dataset, target, err)
	}
	log.WithFields(log.Fields{"dataset": a.dataset, "table": target, "rows": len(rows)}).Info("Appended metadata rows")
	return nil
}

// Close releases the underlying client.
func (a *BigQueryAppender) Close() error {
	return a.client.Close()
}

func ensureTable(ctx context.Context, table *bigquery.Table) error {
	_, err := table.Metadata(ctx)
	if err == nil {
		return nil
	}
	if !hasStatus(err, http.StatusNotFound) {
		return err
	}
	log.WithField("table", table.FullyQualifiedName()).Info("Creating metadata table")
	err = table.Create(ctx, &bigquery.TableMetadata{Schema: MetadataSchema})
	if err != nil && !hasStatus(err, http.StatusConflict) {
		return err
	}
	return nil
}

func hasStatus(err error, code int) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
