package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"

	"github.com/arnkore/hive-ddl-extractor/pkg/metadata"
	"github.com/arnkore/hive-ddl-extractor/pkg/storage"
)

const envPrefix = "hiveddl"

// Options are the command line flags and positional arguments.
type Options struct {
	Port            int           `long:"port" default:"443" description:"Port of the catalog SQL endpoint"`
	HTTPPath        string        `long:"http-path" description:"HTTP path of the catalog SQL warehouse"`
	Timeout         time.Duration `long:"timeout" default:"5m" description:"Catalog query timeout"`
	OnError         string        `long:"on-error" default:"abort" choice:"abort" choice:"skip" description:"What to do with a table whose catalog output cannot be parsed"`
	OnMissingFormat string        `long:"on-missing-format" default:"fail" choice:"fail" choice:"skip" choice:"describe" description:"What to do when a CREATE statement has no USING clause"`
	SourceScheme    string        `long:"source-scheme" default:"hdfs" description:"Scheme expected on table locations"`
	DDLPrefix       string        `long:"ddl-prefix" default:"SparkDDL/DDL" description:"Object name prefix of the DDL file"`
	MetadataTable   string        `long:"metadata-table" default:"metadata" description:"Table the metadata rows are appended to"`
	OutputDir       string        `long:"output-dir" description:"Write the DDL file under this directory instead of the bucket and skip BigQuery"`

	ResultsDBHost    string `long:"results-db-host" description:"Host of the MySQL results database"`
	ResultsDBPort    int    `long:"results-db-port" default:"3306" description:"Port of the MySQL results database"`
	ResultsDBUser    string `long:"results-db-user" description:"Username for the results database"`
	ResultsDBName    string `long:"results-db-name" description:"Name of the results database"`
	InitializeSchema bool   `long:"init-schema" description:"Create the results tables if they do not exist"`

	LogLevel string `long:"log-level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`
	LogJSON  bool   `long:"log-json" description:"Log in JSON format"`

	Args struct {
		Host     string `positional-arg-name:"metastore-host" description:"Catalog SQL endpoint host"`
		Project  string `positional-arg-name:"project" description:"GCP project"`
		Database string `positional-arg-name:"database" description:"Database to extract"`
		Bucket   string `positional-arg-name:"working-bucket" description:"GCS working bucket"`
		Dataset  string `positional-arg-name:"dataset" description:"BigQuery dataset"`
	} `positional-args:"yes" required:"yes"`
}

// Secrets are read from HIVEDDL_* environment variables.
type Secrets struct {
	CatalogToken       string `envconfig:"CATALOG_TOKEN" required:"true"`
	GCPCredentialsJSON string `envconfig:"GCP_CREDENTIALS_JSON"`
	ResultsDBPassword  string `envconfig:"RESULTS_DB_PASSWORD"`
}

// loadSecrets reads an optional .env file, then the environment.
func loadSecrets() (*Secrets, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to load .env file")
	}
	var secrets Secrets
	if err := envconfig.Process(envPrefix, &secrets); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &secrets, nil
}

func setupLogging(opts *Options) error {
	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if opts.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stderr)
	return nil
}

func catalogConfig(opts *Options, secrets *Secrets) *metadata.Config {
	config := metadata.NewConfig(opts.Args.Host, opts.Port, opts.HTTPPath, secrets.CatalogToken)
	if opts.Timeout > 0 {
		config.Timeout = opts.Timeout
	}
	return config
}

func rewriter(opts *Options) metadata.LocationRewriter {
	rw := metadata.NewRawZoneRewriter(opts.Args.Bucket)
	if opts.SourceScheme != "" {
		rw.SourceScheme = opts.SourceScheme
	}
	return rw
}

func usesResultsDB(opts *Options) bool {
	return opts.ResultsDBHost != "" || opts.ResultsDBName != ""
}

func validateResultsDB(opts *Options) error {
	if !usesResultsDB(opts) {
		return nil
	}
	if opts.ResultsDBHost == "" {
		return fmt.Errorf("--results-db-host is required with --results-db-name")
	}
	if opts.ResultsDBName == "" {
		return fmt.Errorf("--results-db-name is required with --results-db-host")
	}
	return nil
}

// buildDSN renders the results database DSN.
func buildDSN(opts *Options, password string) string {
	config := mysql.NewConfig()
	config.User = opts.ResultsDBUser
	config.Passwd = password
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", opts.ResultsDBHost, opts.ResultsDBPort)
	config.DBName = opts.ResultsDBName
	config.ParseTime = true
	config.Params = map[string]string{"charset": "utf8mb4"}
	return config.FormatDSN()
}

func persistence(opts *Options) storage.Persistence {
	return storage.Persistence{
		BlobPrefix: opts.DDLPrefix,
		RowTarget:  opts.MetadataTable,
	}
}
