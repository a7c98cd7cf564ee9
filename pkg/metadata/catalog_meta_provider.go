package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/arnkore/hive-ddl-extractor/pkg/parser"
	"github.com/arnkore/hive-ddl-extractor/pkg/utils"
)

// CatalogMetaProvider issues the catalog's native describe-style statements.
type CatalogMetaProvider struct {
	ConnProvider *CatalogConnProvider
}

// NewCatalogMetaProvider creates a new CatalogMetaProvider.
func NewCatalogMetaProvider(connProvider *CatalogConnProvider) *CatalogMetaProvider {
	return &CatalogMetaProvider{ConnProvider: connProvider}
}

var _ Catalog = (*CatalogMetaProvider)(nil)

// DatabaseExists checks whether the catalog knows database.
func (p *CatalogMetaProvider) DatabaseExists(ctx context.Context, database string) (bool, error) {
	rows, err := p.getDbConn().QueryContext(ctx, fmt.Sprintf("SHOW DATABASES LIKE %s", utils.QuoteLiteral(database)))
	if err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("failed to scan database name: %w", err)
		}
		if strings.EqualFold(name, database) {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("error iterating databases: %w", err)
	}
	return false, nil
}

// ListTables enumerates the permanent tables of database in catalog order.
func (p *CatalogMetaProvider) ListTables(ctx context.Context, database string) ([]TableRef, error) {
	rows, err := p.getDbConn().QueryContext(ctx, fmt.Sprintf("SHOW TABLES IN %s", utils.QuoteIdentifier(database)))
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []TableRef
	for rows.Next() {
		var (
			namespace   string
			tableName   string
			isTemporary bool
		)
		if err := rows.Scan(&namespace, &tableName, &isTemporary); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		if isTemporary {
			continue
		}
		tables = append(tables, TableRef{Database: database, Name: tableName})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// ShowCreateTable returns the createtab_stmt text of table.
func (p *CatalogMetaProvider) ShowCreateTable(ctx context.Context, table TableRef) (string, error) {
	var stmt string
	query := fmt.Sprintf("SHOW CREATE TABLE %s", utils.QualifiedName(table.Database, table.Name))
	if err := p.getDbConn().QueryRowContext(ctx, query).Scan(&stmt); err != nil {
		return "", fmt.Errorf("failed to show create table %s: %w", table, err)
	}
	return stmt, nil
}

// DescribeFormatted returns every row of DESCRIBE FORMATTED, synthetic rows included.
func (p *CatalogMetaProvider) DescribeFormatted(ctx context.Context, table TableRef) ([]parser.DescribeRow, error) {
	query := fmt.Sprintf("DESCRIBE FORMATTED %s", utils.QualifiedName(table.Database, table.Name))
	rows, err := p.getDbConn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	defer rows.Close()

	var described []parser.DescribeRow
	for rows.Next() {
		var colName, dataType, comment sql.NullString
		if err := rows.Scan(&colName, &dataType, &comment); err != nil {
			return nil, fmt.Errorf("failed to scan describe row: %w", err)
		}
		described = append(described, parser.DescribeRow{
			ColName:  colName.String,
			DataType: dataType.String,
			Comment:  comment.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating describe rows: %w", err)
	}
	return described, nil
}

// ShowTableExtended returns the free-text information column for table.
func (p *CatalogMetaProvider) ShowTableExtended(ctx context.Context, table TableRef) (string, error) {
	var (
		namespace   string
		tableName   string
		isTemporary bool
		information string
	)
	query := fmt.Sprintf("SHOW TABLE EXTENDED IN %s LIKE %s", utils.QuoteIdentifier(table.Database), utils.QuoteLiteral(table.Name))
	err := p.getDbConn().QueryRowContext(ctx, query).Scan(&namespace, &tableName, &isTemporary, &information)
	if err != nil {
		return "", fmt.Errorf("failed to show table extended %s: %w", table, err)
	}
	return information, nil
}

func (p *CatalogMetaProvider) getDbConn() *sql.DB {
	return p.ConnProvider.GetDbConn()
}
