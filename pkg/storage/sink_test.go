package storage

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/arnkore/hive-ddl-extractor/pkg/batch"
	"github.com/arnkore/hive-ddl-extractor/pkg/metadata"
)

var fixedTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func TestObjectName(t *testing.T) {
	assert.Equal(t, "SparkDDL/DDL03-05-2024 14.07.09", ObjectName(DefaultDDLPrefix, fixedTime))
}

func TestFsBlobWriter_WriteBlob(t *testing.T) {
	fs := afero.NewMemMapFs()
	writer := NewFsBlobWriter(fs, "/out").WithClock(fixedClock)

	path, err := writer.WriteBlob(context.Background(), "CREATE TABLE IF NOT EXISTS t (\n  a INT);\n", DefaultDDLPrefix)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "SparkDDL", "DDL03-05-2024 14.07.09"), path)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS t (\n  a INT);\n", string(content))
}

func TestFsBlobWriter_ReadOnly(t *testing.T) {
	writer := NewFsBlobWriter(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/out").WithClock(fixedClock)

	_, err := writer.WriteBlob(context.Background(), "x", DefaultDDLPrefix)
	assert.Error(t, err)
}

func TestMetadataSchema(t *testing.T) {
	require.Len(t, MetadataSchema, len(metadata.MetadataColumns))
	for i, field := range MetadataSchema {
		assert.Equal(t, metadata.MetadataColumns[i], field.Name)
		assert.Equal(t, bigquery.StringFieldType, field.Type)
	}
}

func TestMetadataRow_Save(t *testing.T) {
	row, insertID, err := metadataRow(salesRecord).Save()
	require.NoError(t, err)
	assert.Empty(t, insertID)
	assert.Equal(t, map[string]bigquery.Value{
		"database":          "retail",
		"table":             "sales",
		"partition_string":  "year int",
		"format":            "parquet",
		"hdfs_path":         salesRecord.SourceLocation,
		"gcs_raw_zone_path": salesRecord.DestinationLocation,
	}, row)
}

func TestHasStatus(t *testing.T) {
	notFound := fmt.Errorf("metadata: %w", &googleapi.Error{Code: http.StatusNotFound})
	assert.True(t, hasStatus(notFound, http.StatusNotFound))
	assert.False(t, hasStatus(notFound, http.StatusConflict))
	assert.False(t, hasStatus(fmt.Errorf("timeout"), http.StatusNotFound))
}

type fakeBlobWriter struct {
	content string
	prefix  string
	err     error
}

func (w *fakeBlobWriter) WriteBlob(_ context.Context, content, prefix string) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.content, w.prefix = content, prefix
	return ObjectName(prefix, fixedTime), nil
}

type fakeAppender struct {
	mu      sync.Mutex
	records []metadata.MetadataRecord
	target  string
	err     error
}

func (a *fakeAppender) AppendRows(_ context.Context, records []metadata.MetadataRecord, target string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.records = append(a.records, records...)
	a.target = target
	return nil
}

func testResult() *batch.Result {
	return &batch.Result{
		Database:   "retail",
		DDL:        "CREATE TABLE IF NOT EXISTS sales (\n  `id` BIGINT)\nPARTITIONED BY (year int);\n",
		Statements: 1,
		Records:    []metadata.MetadataRecord{salesRecord},
	}
}

func TestPersist(t *testing.T) {
	blobs := &fakeBlobWriter{}
	rows := &fakeAppender{}

	object, err := Persist(context.Background(), Persistence{
		Blobs:     blobs,
		Rows:      rows,
		RowTarget: DefaultBigQueryTable,
	}, testResult())
	require.NoError(t, err)
	assert.Equal(t, "SparkDDL/DDL03-05-2024 14.07.09", object)
	assert.Equal(t, DefaultDDLPrefix, blobs.prefix)
	assert.Equal(t, testResult().DDL, blobs.content)
	assert.Equal(t, []metadata.MetadataRecord{salesRecord}, rows.records)
	assert.Equal(t, DefaultBigQueryTable, rows.target)
}

func TestPersist_WithoutRows(t *testing.T) {
	blobs := &fakeBlobWriter{}
	object, err := Persist(context.Background(), Persistence{Blobs: blobs, BlobPrefix: "ddl/"}, testResult())
	require.NoError(t, err)
	assert.Equal(t, "ddl/03-05-2024 14.07.09", object)
}

func TestPersist_AppendFailure(t *testing.T) {
	_, err := Persist(context.Background(), Persistence{
		Blobs: &fakeBlobWriter{},
		Rows:  &fakeAppender{err: fmt.Errorf("quota exceeded")},
	}, testResult())
	assert.EqualError(t, err, "failed to append metadata: quota exceeded")
}

func TestPersist_BlobFailure(t *testing.T) {
	_, err := Persist(context.Background(), Persistence{
		Blobs: &fakeBlobWriter{err: fmt.Errorf("bucket not found")},
		Rows:  &fakeAppender{},
	}, testResult())
	assert.EqualError(t, err, "failed to write DDL: bucket not found")
}

func TestPersist_NoBlobWriter(t *testing.T) {
	_, err := Persist(context.Background(), Persistence{}, testResult())
	assert.Error(t, err)
}
