package batch

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/arnkore/hive-ddl-extractor/pkg/common"
	"github.com/arnkore/hive-ddl-extractor/pkg/ddl"
	"github.com/arnkore/hive-ddl-extractor/pkg/metadata"
	"github.com/arnkore/hive-ddl-extractor/pkg/parser"
	"github.com/arnkore/hive-ddl-extractor/pkg/partition"
	"github.com/arnkore/hive-ddl-extractor/pkg/utils"
)

// Extractor reconstructs the DDL and metadata of every table in a database,
// one table at a time in catalog enumeration order.
type Extractor struct {
	Catalog             metadata.Catalog
	Rewriter            metadata.LocationRewriter
	FailurePolicy       common.FailurePolicy
	MissingFormatPolicy common.MissingFormatPolicy
}

// NewExtractor creates a new Extractor.
func NewExtractor(catalog metadata.Catalog, rewriter metadata.LocationRewriter,
	failurePolicy common.FailurePolicy, missingFormatPolicy common.MissingFormatPolicy) *Extractor {
	return &Extractor{
		Catalog:             catalog,
		Rewriter:            rewriter,
		FailurePolicy:       failurePolicy,
		MissingFormatPolicy: missingFormatPolicy,
	}
}

// Run extracts every table of database. Catalog failures always abort the run;
// per-table parse failures abort or skip according to the configured policies.
// An aborted run returns no partial result.
func (e *Extractor) Run(ctx context.Context, database string) (*Result, error) {
	exists, err := e.Catalog.DatabaseExists(ctx, database)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", common.ErrDatabaseNotFound, database)
	}

	tables, err := e.Catalog.ListTables(ctx, database)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		common.DATABASE_KEY: database,
		"tables":            len(tables),
	}).Info("Starting DDL extraction")

	var blob ddl.Blob
	result := &Result{
		Database:     database,
		Records:      make([]metadata.MetadataRecord, 0, len(tables)),
		Extracted:    make([]metadata.TableRef, 0, len(tables)),
		Fingerprints: make(map[string]uint32, len(tables)),
	}
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger := log.WithFields(log.Fields{
			common.DATABASE_KEY: table.Database,
			common.TABLE_KEY:    table.Name,
		})

		logger.Info("Extracting DDL for table")
		stmt, record, err := e.ExtractTable(ctx, table)
		if err != nil {
			if !common.IsParseError(err) {
				return nil, err
			}
			tableErr := &common.TableError{Table: table.String(), Err: err}
			if e.shouldSkip(err) {
				logger.WithError(err).Warn("Skipping table")
				result.Skipped = append(result.Skipped, SkippedTable{Table: table, Reason: tableErr})
				continue
			}
			logger.WithError(err).Error("Aborting extraction")
			return nil, tableErr
		}

		blob.Append(stmt)
		result.Records = append(result.Records, record)
		result.Extracted = append(result.Extracted, table)
		result.Fingerprints[table.String()] = utils.Fingerprint(stmt)
		logger.WithFields(log.Fields{
			"location":    record.SourceLocation,
			"destination": record.DestinationLocation,
			"partitions":  record.PartitionString,
		}).Debug("Extracted table")
	}

	result.DDL = blob.String()
	result.Statements = blob.Count()
	log.WithFields(log.Fields{
		common.DATABASE_KEY: database,
		"extracted":         result.Statements,
		"skipped":           len(result.Skipped),
		"ddl_bytes":         blob.Len(),
	}).Info("Finished DDL extraction")
	return result, nil
}

// ExtractTable queries the catalog for one table and reconstructs its
// statement and metadata record. Nothing is returned unless every step succeeds.
func (e *Extractor) ExtractTable(ctx context.Context, table metadata.TableRef) (string, metadata.MetadataRecord, error) {
	createStmt, err := e.Catalog.ShowCreateTable(ctx, table)
	if err != nil {
		return "", metadata.MetadataRecord{}, err
	}
	described, err := e.Catalog.DescribeFormatted(ctx, table)
	if err != nil {
		return "", metadata.MetadataRecord{}, err
	}
	extended, err := e.Catalog.ShowTableExtended(ctx, table)
	if err != nil {
		return "", metadata.MetadataRecord{}, err
	}

	desc, err := e.describeTable(createStmt, described, extended)
	if err != nil {
		return "", metadata.MetadataRecord{}, err
	}

	resolution, err := partition.NewClauseResolver(table.Name, createStmt).Resolve(parser.BuildColumnTypeIndex(described))
	if err != nil {
		return "", metadata.MetadataRecord{}, err
	}
	stmt := ddl.Compose(table.Name, resolution.FirstPart, resolution.Spec.Clause())
	if err := ddl.Validate(stmt); err != nil {
		return "", metadata.MetadataRecord{}, fmt.Errorf("failed to reconstruct DDL for %s: %w", table, err)
	}

	record, err := metadata.BuildRecord(*desc, resolution.Spec, e.Rewriter)
	if err != nil {
		return "", metadata.MetadataRecord{}, err
	}
	return stmt, record, nil
}

func (e *Extractor) describeTable(createStmt string, described []parser.DescribeRow, extended string) (*metadata.TableDescriptor, error) {
	database, err := parser.ExtractDatabaseName(described)
	if err != nil {
		return nil, err
	}
	tableName, err := parser.ExtractTableName(described)
	if err != nil {
		return nil, err
	}
	location, err := parser.ExtractRawLocation(extended)
	if err != nil {
		return nil, err
	}
	format, err := e.storageFormat(createStmt, described)
	if err != nil {
		return nil, err
	}
	return &metadata.TableDescriptor{
		Database:      database,
		Table:         tableName,
		RawLocation:   location,
		StorageFormat: format,
	}, nil
}

// storageFormat reads the USING clause, falling back to the describe Provider
// row when the describe policy is configured.
func (e *Extractor) storageFormat(createStmt string, described []parser.DescribeRow) (string, error) {
	format, err := parser.ExtractStorageFormat(createStmt)
	if err == nil || e.MissingFormatPolicy != common.MissingFormatDescribe {
		return format, err
	}
	if provider, ok := parser.ExtractDescribeValue(described, parser.ProviderLabel); ok {
		return provider, nil
	}
	return "", err
}

func (e *Extractor) shouldSkip(err error) bool {
	if isMissingFormat(err) && e.MissingFormatPolicy == common.MissingFormatSkip {
		return true
	}
	return e.FailurePolicy == common.FailurePolicySkip
}

func isMissingFormat(err error) bool {
	var malformed *common.MalformedCatalogOutputError
	return errors.As(err, &malformed) && malformed.Marker == parser.UsingMarker
}
