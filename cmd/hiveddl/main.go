package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"google.golang.org/api/option"

	"github.com/arnkore/hive-ddl-extractor/pkg/batch"
	"github.com/arnkore/hive-ddl-extractor/pkg/common"
	"github.com/arnkore/hive-ddl-extractor/pkg/metadata"
	"github.com/arnkore/hive-ddl-extractor/pkg/storage"
)

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[options] <metastore-host> <project> <database> <working-bucket> <dataset>"
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if err := setupLogging(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &opts); err != nil {
		log.WithError(err).Error("DDL extraction failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *Options) error {
	failurePolicy, err := common.ParseFailurePolicy(opts.OnError)
	if err != nil {
		return err
	}
	missingFormatPolicy, err := common.ParseMissingFormatPolicy(opts.OnMissingFormat)
	if err != nil {
		return err
	}
	if err := validateResultsDB(opts); err != nil {
		return err
	}
	secrets, err := loadSecrets()
	if err != nil {
		return err
	}

	// --- Results DB ---
	var dbStore *storage.Store
	if usesResultsDB(opts) {
		resultsDB, err := sql.Open("mysql", buildDSN(opts, secrets.ResultsDBPassword))
		if err != nil {
			return fmt.Errorf("failed to open results database: %w", err)
		}
		defer resultsDB.Close()
		if err := resultsDB.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping results database: %w", err)
		}
		log.WithFields(log.Fields{"host": opts.ResultsDBHost, "database": opts.ResultsDBName}).Info("Connected to results database")

		dbStore = storage.NewStore(resultsDB)
		if opts.InitializeSchema {
			if err := dbStore.InitializeSchema(ctx); err != nil {
				return err
			}
			log.Info("Results schema initialized")
		}
	}

	// --- Sinks ---
	p := persistence(opts)
	if opts.OutputDir != "" {
		p.Blobs = storage.NewFsBlobWriter(afero.NewOsFs(), opts.OutputDir)
		if dbStore != nil {
			p.Rows = dbStore
			p.RowTarget = storage.DefaultMetadataTable
		}
	} else {
		var gcpOpts []option.ClientOption
		if secrets.GCPCredentialsJSON != "" {
			gcpOpts = append(gcpOpts, option.WithCredentialsJSON([]byte(secrets.GCPCredentialsJSON)))
		}
		blobs, err := storage.NewGCSBlobWriter(ctx, opts.Args.Bucket, gcpOpts...)
		if err != nil {
			return err
		}
		defer blobs.Close()
		rows, err := storage.NewBigQueryAppender(ctx, opts.Args.Project, opts.Args.Dataset, gcpOpts...)
		if err != nil {
			return err
		}
		defer rows.Close()
		p.Blobs, p.Rows = blobs, rows
	}

	// --- Catalog ---
	connProvider, err := metadata.NewCatalogConnProvider(ctx, catalogConfig(opts, secrets))
	if err != nil {
		return err
	}
	defer connProvider.Close()
	log.WithField("host", opts.Args.Host).Info("Connected to catalog")

	extractor := batch.NewExtractor(metadata.NewCatalogMetaProvider(connProvider), rewriter(opts),
		failurePolicy, missingFormatPolicy)

	recorder := storage.NewJobRecorder(dbStore)
	recorder.Start(ctx, opts.Args.Database)
	result, err := extractor.Run(ctx, opts.Args.Database)
	if err != nil {
		recorder.Finish(ctx, nil, err)
		return err
	}

	object, err := storage.Persist(ctx, p, result)
	recorder.Finish(ctx, result, err)
	if err != nil {
		return err
	}
	recorder.ReportDrift(ctx, result)

	log.WithFields(log.Fields{
		common.DATABASE_KEY: result.Database,
		common.JOB_ID_KEY:   recorder.JobID(),
		"object":            object,
		"extracted":         result.Statements,
		"skipped":           len(result.Skipped),
		"status":            result.Status(),
	}).Info("DDL extraction completed")
	for _, skipped := range result.Skipped {
		log.WithError(skipped.Reason).WithField(common.TABLE_KEY, skipped.Table.String()).Warn("Table was skipped")
	}
	return nil
}
