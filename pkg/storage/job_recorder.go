package storage

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/arnkore/hive-ddl-extractor/pkg/batch"
	"github.com/arnkore/hive-ddl-extractor/pkg/checksum"
	"github.com/arnkore/hive-ddl-extractor/pkg/common"
)

// JobRecorder tracks a run in the results database. A nil store, or a store
// that fails to create the job, turns every call into a no-op; bookkeeping
// never fails the extraction itself.
type JobRecorder struct {
	store *Store
	jobID int64
}

// NewJobRecorder creates a recorder. store may be nil.
func NewJobRecorder(store *Store) *JobRecorder {
	return &JobRecorder{store: store}
}

// JobID returns the ID of the current job, or 0 if none was created.
func (r *JobRecorder) JobID() int64 {
	return r.jobID
}

// Start creates the job record for database.
func (r *JobRecorder) Start(ctx context.Context, database string) {
	if r.store == nil {
		return
	}
	jobID, err := r.store.CreateJob(ctx, database)
	if err != nil {
		log.WithError(err).Error("Failed to create extraction job, proceeding without results DB")
		r.store = nil
		return
	}
	r.jobID = jobID
	log.WithFields(log.Fields{common.JOB_ID_KEY: jobID, common.DATABASE_KEY: database}).Info("Created extraction job")
}

// Finish saves one row per extracted or skipped table and closes the job.
// A nil result with a non-nil runErr marks the job failed.
func (r *JobRecorder) Finish(ctx context.Context, result *batch.Result, runErr error) {
	if r.store == nil || r.jobID == 0 {
		return
	}
	logger := log.WithField(common.JOB_ID_KEY, r.jobID)

	if runErr != nil || result == nil {
		msg := "extraction returned no result"
		if runErr != nil {
			msg = runErr.Error()
		}
		if err := r.store.UpdateJobCompletion(ctx, r.jobID, common.JobStatusFailed, 0, 0, msg); err != nil {
			logger.WithError(err).Error("Failed to update final job status")
		}
		return
	}

	for _, ref := range result.Extracted {
		err := r.store.SaveTableResult(ctx, TableResultData{
			JobID:       r.jobID,
			Table:       ref.String(),
			Status:      common.TableStatusExtracted,
			Fingerprint: result.Fingerprints[ref.String()],
		})
		if err != nil {
			logger.WithError(err).Error("Failed to save table result")
		}
	}
	for _, skipped := range result.Skipped {
		err := r.store.SaveTableResult(ctx, TableResultData{
			JobID:  r.jobID,
			Table:  skipped.Table.String(),
			Status: common.TableStatusSkipped,
			Error:  skipped.Reason.Error(),
		})
		if err != nil {
			logger.WithError(err).Error("Failed to save table result")
		}
	}

	status := result.Status()
	if err := r.store.UpdateJobCompletion(ctx, r.jobID, status, len(result.Records), len(result.Skipped), ""); err != nil {
		logger.WithError(err).Error("Failed to update final job status")
		return
	}
	logger.WithField("status", status).Info("Job final status updated")
}

// ReportDrift compares the fingerprints of result with the previous successful
// job for the same database and logs any difference. It returns nil when there
// is no store or no previous job.
func (r *JobRecorder) ReportDrift(ctx context.Context, result *batch.Result) *checksum.Drift {
	if r.store == nil || r.jobID == 0 || result == nil {
		return nil
	}
	logger := log.WithFields(log.Fields{common.JOB_ID_KEY: r.jobID, common.DATABASE_KEY: result.Database})

	previous, previousSkipped, err := r.store.PreviousFingerprints(ctx, result.Database, r.jobID)
	if err != nil {
		logger.WithError(err).Error("Failed to load previous fingerprints")
		return nil
	}
	if len(previous) == 0 && len(previousSkipped) == 0 {
		logger.Debug("No previous job to compare DDL against")
		return nil
	}

	ignore := previousSkipped
	for _, skipped := range result.Skipped {
		ignore = append(ignore, skipped.Table.String())
	}
	drift := checksum.CompareFingerprintMap(previous, result.Fingerprints, ignore...)
	if drift.IsEmpty() {
		logger.Info("DDL unchanged since previous job")
	} else {
		logger.WithFields(log.Fields{
			"changed": drift.Changed,
			"added":   drift.Added,
			"removed": drift.Removed,
		}).Warn("DDL drift since previous job")
	}
	return &drift
}
