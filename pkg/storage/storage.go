package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/arnkore/hive-ddl-extractor/pkg/common"
	"github.com/arnkore/hive-ddl-extractor/pkg/metadata"
	"github.com/arnkore/hive-ddl-extractor/pkg/utils"
)

// DefaultMetadataTable is the SQL table AppendRows writes to when no target is given.
const DefaultMetadataTable = "table_metadata"

// Store handles database operations for extraction jobs and their results.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store instance.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const (
	createExtractionJobsTableSQL = `
CREATE TABLE IF NOT EXISTS extraction_jobs (
    job_id BIGINT AUTO_INCREMENT PRIMARY KEY,
    database_name VARCHAR(255) NOT NULL,
    status VARCHAR(50) NOT NULL DEFAULT 'pending', -- pending, running, completed, completed_with_skips, failed
    extracted_count INT DEFAULT 0,
    skipped_count INT DEFAULT 0,
    start_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    end_time TIMESTAMP NULL,
    error_message TEXT NULL,
    INDEX idx_job_database_status (database_name, status),
    INDEX idx_job_start_time (start_time)
);`

	createTableResultsTableSQL = `
CREATE TABLE IF NOT EXISTS table_results (
    result_id BIGINT AUTO_INCREMENT PRIMARY KEY,
    job_id BIGINT NOT NULL,
    table_name VARCHAR(255) NOT NULL,
    status VARCHAR(50) NOT NULL,
    ddl_fingerprint BIGINT NULL,
    error_message TEXT NULL,
    extraction_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (job_id) REFERENCES extraction_jobs(job_id) ON DELETE CASCADE,
    INDEX idx_result_job_id (job_id),
    INDEX idx_result_job_status (job_id, status)
);`

	createTableMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS table_metadata (
    metadata_id BIGINT AUTO_INCREMENT PRIMARY KEY,
    ` + "`database`" + ` VARCHAR(255) NOT NULL,
    ` + "`table`" + ` VARCHAR(255) NOT NULL,
    partition_string TEXT,
    format VARCHAR(64),
    hdfs_path TEXT,
    gcs_raw_zone_path TEXT,
    INDEX idx_metadata_table (` + "`database`, `table`" + `)
);`
)

// InitializeSchema creates the job, result and metadata tables if they are missing.
func (s *Store) InitializeSchema(ctx context.Context) error {
	for _, stmt := range []string{createExtractionJobsTableSQL, createTableResultsTableSQL, createTableMetadataTableSQL} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// CreateJob inserts a new running job for database and returns its ID.
func (s *Store) CreateJob(ctx context.Context, database string) (int64, error) {
	query := `INSERT INTO extraction_jobs (database_name, status, start_time) VALUES (?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, database, common.JobStatusRunning, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to insert new job: %w", err)
	}
	jobID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for job: %w", err)
	}
	return jobID, nil
}

// UpdateJobCompletion updates the job record upon successful or failed completion.
func (s *Store) UpdateJobCompletion(ctx context.Context, jobID int64, status common.JobStatus, extracted, skipped int, errorMessage string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	query := `UPDATE extraction_jobs
	          SET status = ?, extracted_count = ?, skipped_count = ?, end_time = ?, error_message = ?
	          WHERE job_id = ?`
	_, err := s.db.ExecContext(ctx, query, status, extracted, skipped, time.Now(),
		sql.NullString{String: errorMessage, Valid: errorMessage != ""}, jobID)
	if err != nil {
		return fmt.Errorf("failed to update job completion for job %d: %w", jobID, err)
	}
	return nil
}

// TableResultData holds the outcome of one table to be saved.
type TableResultData struct {
	JobID       int64
	Table       string
	Status      common.JobStatus
	Fingerprint uint32
	Error       string
}

// SaveTableResult inserts a result record for a single table.
func (s *Store) SaveTableResult(ctx context.Context, data TableResultData) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	query := `INSERT INTO table_results (job_id, table_name, status, ddl_fingerprint, error_message, extraction_time)
	          VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, data.JobID, data.Table, data.Status,
		sql.NullInt64{Int64: int64(data.Fingerprint), Valid: data.Status == common.TableStatusExtracted},
		sql.NullString{String: data.Error, Valid: data.Error != ""},
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save result for job %d, table %s: %w", data.JobID, data.Table, err)
	}
	return nil
}

// AppendRows inserts records into target in a single transaction.
func (s *Store) AppendRows(ctx context.Context, records []metadata.MetadataRecord, target string) error {
	if len(records) == 0 {
		return nil
	}
	if target == "" {
		target = DefaultMetadataTable
	}
	columns := lo.Map(metadata.MetadataColumns, func(c string, _ int) string {
		return utils.QuoteIdentifier(c)
	})
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", utils.QuoteIdentifier(target),
		strings.Join(columns, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin metadata transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		args := lo.Map(record.Values(), func(v string, _ int) any { return v })
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert metadata for %s.%s: %w", record.Database, record.Table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metadata rows: %w", err)
	}
	return nil
}

// PreviousFingerprints returns the DDL fingerprints of the last successful job
// for database started before jobID, and the tables that job skipped. Both are
// empty if there is no such job.
func (s *Store) PreviousFingerprints(ctx context.Context, database string, jobID int64) (map[string]uint32, []string, error) {
	query := `SELECT table_name, status, ddl_fingerprint FROM table_results
	          WHERE status IN (?, ?) AND job_id = (
	              SELECT MAX(job_id) FROM extraction_jobs
	              WHERE database_name = ? AND job_id < ? AND status IN (?, ?))`
	rows, err := s.db.QueryContext(ctx, query, common.TableStatusExtracted, common.TableStatusSkipped,
		database, jobID, common.JobStatusCompleted, common.JobStatusCompletedWithSkips)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query previous fingerprints: %w", err)
	}
	defer rows.Close()

	fingerprints := make(map[string]uint32)
	var skipped []string
	for rows.Next() {
		var (
			table       string
			status      string
			fingerprint sql.NullInt64
		)
		if err := rows.Scan(&table, &status, &fingerprint); err != nil {
			return nil, nil, fmt.Errorf("failed to scan previous fingerprint: %w", err)
		}
		if common.JobStatus(status) == common.TableStatusSkipped || !fingerprint.Valid {
			skipped = append(skipped, table)
			continue
		}
		fingerprints[table] = uint32(fingerprint.Int64)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return fingerprints, skipped, nil
}
