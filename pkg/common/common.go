package common

import "fmt"

// JobStatus defines the possible statuses for an extraction job and its tables.
type JobStatus string

const (
	JobStatusPending            JobStatus = "pending"
	JobStatusRunning            JobStatus = "running"
	JobStatusCompleted          JobStatus = "completed"
	JobStatusCompletedWithSkips JobStatus = "completed_with_skips"
	JobStatusFailed             JobStatus = "failed"
	TableStatusExtracted        JobStatus = "extracted"
	TableStatusSkipped          JobStatus = "skipped"

	JOB_ID_KEY   = "job_id"
	TABLE_KEY    = "table"
	DATABASE_KEY = "database"
)

// FailurePolicy decides what the batch driver does with a table that fails to parse.
type FailurePolicy string

const (
	FailurePolicyAbort FailurePolicy = "abort"
	FailurePolicySkip  FailurePolicy = "skip"
)

// MissingFormatPolicy decides what happens when a CREATE statement has no USING clause.
type MissingFormatPolicy string

const (
	MissingFormatFail     MissingFormatPolicy = "fail"
	MissingFormatSkip     MissingFormatPolicy = "skip"
	MissingFormatDescribe MissingFormatPolicy = "describe"
)

// ParseFailurePolicy validates a policy name given on the command line.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case FailurePolicyAbort, FailurePolicySkip:
		return p, nil
	case "":
		return FailurePolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want abort or skip)", s)
	}
}

// ParseMissingFormatPolicy validates a missing-format policy name.
func ParseMissingFormatPolicy(s string) (MissingFormatPolicy, error) {
	switch p := MissingFormatPolicy(s); p {
	case MissingFormatFail, MissingFormatSkip, MissingFormatDescribe:
		return p, nil
	case "":
		return MissingFormatFail, nil
	default:
		return "", fmt.Errorf("unknown missing-format policy %q (want fail, skip or describe)", s)
	}
}
