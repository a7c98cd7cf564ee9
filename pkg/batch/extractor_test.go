package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/arnkore/hive-ddl-extractor/pkg/common"
	"github.com/arnkore/hive-ddl-extractor/pkg/metadata"
	"github.com/arnkore/hive-ddl-extractor/pkg/parser"
	"github.com/arnkore/hive-ddl-extractor/pkg/utils"
)

type fakeTable struct {
	create    string
	describe  []parser.DescribeRow
	extended  string
	createErr error
}

type fakeCatalog struct {
	databases map[string]bool
	order     []string
	tables    map[string]fakeTable
	listErr   error
	queried   []string
}

func (c *fakeCatalog) DatabaseExists(_ context.Context, database string) (bool, error) {
	return c.databases[database], nil
}

func (c *fakeCatalog) ListTables(_ context.Context, database string) ([]metadata.TableRef, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	refs := make([]metadata.TableRef, 0, len(c.order))
	for _, name := range c.order {
		refs = append(refs, metadata.TableRef{Database: database, Name: name})
	}
	return refs, nil
}

func (c *fakeCatalog) ShowCreateTable(_ context.Context, table metadata.TableRef) (string, error) {
	c.queried = append(c.queried, table.Name)
	t := c.tables[table.Name]
	if t.createErr != nil {
		return "", t.createErr
	}
	return t.create, nil
}

func (c *fakeCatalog) DescribeFormatted(_ context.Context, table metadata.TableRef) ([]parser.DescribeRow, error) {
	return c.tables[table.Name].describe, nil
}

func (c *fakeCatalog) ShowTableExtended(_ context.Context, table metadata.TableRef) (string, error) {
	return c.tables[table.Name].extended, nil
}

func describeRows(table string, columns ...[2]string) []parser.DescribeRow {
	rows := make([]parser.DescribeRow, 0, len(columns)+5)
	for _, c := range columns {
		rows = append(rows, parser.DescribeRow{ColName: c[0], DataType: c[1]})
	}
	return append(rows,
		parser.DescribeRow{},
		parser.DescribeRow{ColName: "# Detailed Table Information"},
		parser.DescribeRow{ColName: "Database", DataType: "retail"},
		parser.DescribeRow{ColName: "Table", DataType: table},
		parser.DescribeRow{ColName: "Provider", DataType: "parquet"},
	)
}

func extendedInfo(table string) string {
	return fmt.Sprintf("Database: retail\nTable: %s\nLocation: hdfs://nn:8020/warehouse/retail.db/%s\nProvider: parquet\n", table, table)
}

var (
	salesTable = fakeTable{
		create: "CREATE TABLE `retail`.`sales` (\n  `id` BIGINT,\n  `amount` DECIMAL(10,2),\n  `year` INT)\n" +
			"USING parquet\nPARTITIONED BY (year)\nLOCATION 'hdfs://nn:8020/warehouse/retail.db/sales'\n",
		describe: describeRows("sales", [2]string{"id", "bigint"}, [2]string{"amount", "decimal(10,2)"}, [2]string{"year", "int"}),
		extended: extendedInfo("sales"),
	}
	customersTable = fakeTable{
		create:   "CREATE TABLE `retail`.`customers` (\n  `id` BIGINT,\n  `name` STRING)\nUSING parquet\n",
		describe: describeRows("customers", [2]string{"id", "bigint"}, [2]string{"name", "string"}),
		extended: extendedInfo("customers"),
	}
	legacyTable = fakeTable{
		create:   "CREATE TABLE `retail`.`legacy` (\n  `id` INT)\nROW FORMAT SERDE 'x'\nSTORED AS TEXTFILE\n",
		describe: describeRows("legacy", [2]string{"id", "int"}),
		extended: extendedInfo("legacy"),
	}
	brokenTable = fakeTable{
		create: "CREATE TABLE `retail`.`broken` (\n  `id` INT)\nUSING parquet\n",
		describe: []parser.DescribeRow{
			{ColName: "id", DataType: "int"},
			{ColName: "# Detailed Table Information"},
			{ColName: "Database", DataType: "retail"},
		},
		extended: extendedInfo("broken"),
	}
)

type ExtractorTestSuite struct {
	suite.Suite
	catalog *fakeCatalog
	hook    *test.Hook
	ctx     context.Context
}

func (s *ExtractorTestSuite) SetupTest() {
	s.catalog = &fakeCatalog{
		databases: map[string]bool{"retail": true},
		order:     []string{"sales", "customers"},
		tables: map[string]fakeTable{
			"sales":     salesTable,
			"customers": customersTable,
			"legacy":    legacyTable,
			"broken":    brokenTable,
		},
	}
	s.hook = test.NewGlobal()
	s.ctx = context.Background()
}

func (s *ExtractorTestSuite) TearDownTest() {
	log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
}

func TestExtractorTestSuite(t *testing.T) {
	suite.Run(t, new(ExtractorTestSuite))
}

func (s *ExtractorTestSuite) newExtractor(failure common.FailurePolicy, missing common.MissingFormatPolicy) *Extractor {
	return NewExtractor(s.catalog, metadata.NewRawZoneRewriter("work"), failure, missing)
}

func (s *ExtractorTestSuite) TestRun_EndToEnd() {
	result, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).Run(s.ctx, "retail")
	require.NoError(s.T(), err)

	expectedSales := "CREATE TABLE IF NOT EXISTS sales (\n  `id` BIGINT,\n  `amount` DECIMAL(10,2))\nPARTITIONED BY (year int);\n"
	expectedCustomers := "CREATE TABLE IF NOT EXISTS customers (\n  `id` BIGINT,\n  `name` STRING);\n"
	assert.Equal(s.T(), expectedSales+expectedCustomers, result.DDL)
	assert.Equal(s.T(), 2, result.Statements)
	assert.Less(s.T(), strings.Index(result.DDL, "sales"), strings.Index(result.DDL, "customers"))

	require.Len(s.T(), result.Records, 2)
	assert.Equal(s.T(), metadata.MetadataRecord{
		Database:            "retail",
		Table:               "sales",
		PartitionString:     "year int",
		StorageFormat:       "parquet",
		SourceLocation:      "hdfs://nn:8020/warehouse/retail.db/sales",
		DestinationLocation: "gs://work/RawZone/nn:8020/warehouse/retail.db/sales",
	}, result.Records[0])
	assert.Equal(s.T(), "customers", result.Records[1].Table)
	assert.Equal(s.T(), "", result.Records[1].PartitionString)

	assert.Empty(s.T(), result.Skipped)
	assert.Equal(s.T(), common.JobStatusCompleted, result.Status())
	assert.Equal(s.T(), utils.Fingerprint(expectedSales), result.Fingerprints["retail.sales"])
}

func (s *ExtractorTestSuite) TestRun_Deterministic() {
	first, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).Run(s.ctx, "retail")
	require.NoError(s.T(), err)
	second, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).Run(s.ctx, "retail")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.DDL, second.DDL)
}

func (s *ExtractorTestSuite) TestRun_DatabaseNotFound() {
	_, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).Run(s.ctx, "nope")
	assert.ErrorIs(s.T(), err, common.ErrDatabaseNotFound)
	assert.Empty(s.T(), s.catalog.queried)
}

func (s *ExtractorTestSuite) TestRun_EmptyDatabase() {
	s.catalog.order = nil
	result, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).Run(s.ctx, "retail")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "", result.DDL)
	assert.Empty(s.T(), result.Records)
}

func (s *ExtractorTestSuite) TestRun_AbortOnMissingTableRow() {
	s.catalog.order = []string{"sales", "broken", "customers"}

	result, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).Run(s.ctx, "retail")
	assert.Nil(s.T(), result)

	var missing *common.MissingFieldError
	require.True(s.T(), errors.As(err, &missing))
	assert.Equal(s.T(), "Table", missing.Field)

	var tableErr *common.TableError
	require.True(s.T(), errors.As(err, &tableErr))
	assert.Equal(s.T(), "retail.broken", tableErr.Table)
	assert.Equal(s.T(), []string{"sales", "broken"}, s.catalog.queried)

	entry := s.hook.LastEntry()
	require.NotNil(s.T(), entry)
	assert.Equal(s.T(), log.ErrorLevel, entry.Level)
	assert.Equal(s.T(), "broken", entry.Data[common.TABLE_KEY])
}

func (s *ExtractorTestSuite) TestRun_SkipPolicyContinues() {
	s.catalog.order = []string{"sales", "broken", "customers"}

	result, err := s.newExtractor(common.FailurePolicySkip, common.MissingFormatFail).Run(s.ctx, "retail")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 2, result.Statements)
	assert.NotContains(s.T(), result.DDL, "broken")
	require.Len(s.T(), result.Skipped, 1)
	assert.Equal(s.T(), "broken", result.Skipped[0].Table.Name)
	assert.Equal(s.T(), common.JobStatusCompletedWithSkips, result.Status())
	_, ok := result.Fingerprints["retail.broken"]
	assert.False(s.T(), ok)
}

func (s *ExtractorTestSuite) TestRun_MissingFormatFail() {
	s.catalog.order = []string{"legacy"}

	_, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).Run(s.ctx, "retail")
	var malformed *common.MalformedCatalogOutputError
	require.True(s.T(), errors.As(err, &malformed))
	assert.Equal(s.T(), parser.UsingMarker, malformed.Marker)
}

func (s *ExtractorTestSuite) TestRun_MissingFormatSkipOverridesAbort() {
	s.catalog.order = []string{"legacy", "customers"}

	result, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatSkip).Run(s.ctx, "retail")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, result.Statements)
	require.Len(s.T(), result.Skipped, 1)
	assert.Equal(s.T(), "legacy", result.Skipped[0].Table.Name)
}

func (s *ExtractorTestSuite) TestRun_MissingFormatSkipStillAbortsOtherErrors() {
	s.catalog.order = []string{"broken"}

	_, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatSkip).Run(s.ctx, "retail")
	var missing *common.MissingFieldError
	assert.True(s.T(), errors.As(err, &missing))
}

func (s *ExtractorTestSuite) TestRun_MissingFormatDescribeFallback() {
	s.catalog.order = []string{"legacy"}

	result, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatDescribe).Run(s.ctx, "retail")
	require.NoError(s.T(), err)
	require.Len(s.T(), result.Records, 1)
	assert.Equal(s.T(), "parquet", result.Records[0].StorageFormat)
	assert.Equal(s.T(), "CREATE TABLE IF NOT EXISTS legacy (\n  `id` INT);\n", result.DDL)
}

func (s *ExtractorTestSuite) TestRun_CatalogFailureAbortsRegardlessOfPolicy() {
	s.catalog.tables["customers"] = fakeTable{createErr: fmt.Errorf("connection reset")}

	result, err := s.newExtractor(common.FailurePolicySkip, common.MissingFormatSkip).Run(s.ctx, "retail")
	assert.Nil(s.T(), result)
	assert.EqualError(s.T(), err, "connection reset")
}

func (s *ExtractorTestSuite) TestRun_ListTablesFailure() {
	s.catalog.listErr = fmt.Errorf("failed to list tables: timeout")

	_, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).Run(s.ctx, "retail")
	assert.EqualError(s.T(), err, "failed to list tables: timeout")
}

func (s *ExtractorTestSuite) TestRun_CancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).Run(ctx, "retail")
	assert.ErrorIs(s.T(), err, context.Canceled)
}

func (s *ExtractorTestSuite) TestExtractTable_UnsupportedLocation() {
	table := customersTable
	table.extended = "Location: /local/warehouse/customers\n"
	s.catalog.tables["customers"] = table

	stmt, record, err := s.newExtractor(common.FailurePolicyAbort, common.MissingFormatFail).
		ExtractTable(s.ctx, metadata.TableRef{Database: "retail", Name: "customers"})
	assert.Empty(s.T(), stmt)
	assert.Equal(s.T(), metadata.MetadataRecord{}, record)
	var unsupported *common.UnsupportedLocationSchemeError
	assert.True(s.T(), errors.As(err, &unsupported))
}
