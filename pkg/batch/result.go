package batch

import (
	"github.com/arnkore/hive-ddl-extractor/pkg/common"
	"github.com/arnkore/hive-ddl-extractor/pkg/metadata"
)

// SkippedTable records a table left out of the batch and why.
type SkippedTable struct {
	Table  metadata.TableRef
	Reason error
}

// Result holds everything accumulated for one database.
type Result struct {
	Database string
	// DDL is every reconstructed statement concatenated in enumeration order.
	DDL        string
	Statements int
	Records    []metadata.MetadataRecord
	// Extracted holds the enumerated ref of each entry in Records.
	Extracted []metadata.TableRef
	Skipped   []SkippedTable
	// Fingerprints maps db.table to the CRC32 of its statement.
	Fingerprints map[string]uint32
}

// Status summarizes the run for the job store.
func (r *Result) Status() common.JobStatus {
	if len(r.Skipped) > 0 {
		return common.JobStatusCompletedWithSkips
	}
	return common.JobStatusCompleted
}
