package metadata

import (
	"context"
	"database/sql"
	"fmt"

	dbsql "github.com/databricks/databricks-sql-go"
	dbsqllog "github.com/databricks/databricks-sql-go/logger"
)

const userAgent = "hive-ddl-extractor"

// CatalogConnProvider owns the session to the catalog's Spark SQL endpoint.
type CatalogConnProvider struct {
	catalogName string
	dbConn      *sql.DB
}

// NewCatalogConnProvider opens and verifies a session to the catalog.
func NewCatalogConnProvider(ctx context.Context, config *Config) (*CatalogConnProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(config.Host),
		dbsql.WithPort(config.Port),
		dbsql.WithHTTPPath(config.HTTPPath),
		dbsql.WithAccessToken(config.Token),
		dbsql.WithTimeout(config.Timeout),
		dbsql.WithUserAgentEntry(userAgent),
		dbsql.WithInitialNamespace(config.Catalog, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog connector: %w", err)
	}
	if err := dbsqllog.SetLogLevel("disabled"); err != nil {
		return nil, fmt.Errorf("failed to set catalog driver log level: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog %s: %w", config.Address(), err)
	}
	return &CatalogConnProvider{catalogName: config.Catalog, dbConn: db}, nil
}

// Close closes the catalog session.
func (p *CatalogConnProvider) Close() error {
	if p.dbConn != nil {
		return p.dbConn.Close()
	}
	return nil
}

func (p *CatalogConnProvider) GetDbConn() *sql.DB {
	return p.dbConn
}

func (p *CatalogConnProvider) GetCatalogName() string {
	return p.catalogName
}
