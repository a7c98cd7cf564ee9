package checksum

import (
	"sort"
)

// Drift lists the tables whose reconstructed DDL differs between two runs.
type Drift struct {
	Changed []string
	Added   []string
	Removed []string
}

// IsEmpty reports whether the two runs produced identical statements.
func (d Drift) IsEmpty() bool {
	return len(d.Changed) == 0 && len(d.Added) == 0 && len(d.Removed) == 0
}

// CompareFingerprintMap compares the per-table fingerprints of a previous run
// with the current one. Keys are db.table; every list is sorted. Tables in
// ignore, typically those skipped by either run, are never reported as added
// or removed.
func CompareFingerprintMap(previous, current map[string]uint32, ignore ...string) Drift {
	ignored := make(map[string]struct{}, len(ignore))
	for _, table := range ignore {
		ignored[table] = struct{}{}
	}

	var drift Drift
	for table, checksum := range current {
		prev, ok := previous[table]
		_, skipped := ignored[table]
		switch {
		case ok && prev != checksum:
			drift.Changed = append(drift.Changed, table)
		case !ok && !skipped:
			drift.Added = append(drift.Added, table)
		}
	}
	for table := range previous {
		_, skipped := ignored[table]
		if _, ok := current[table]; !ok && !skipped {
			drift.Removed = append(drift.Removed, table)
		}
	}

	sort.Strings(drift.Changed)
	sort.Strings(drift.Added)
	sort.Strings(drift.Removed)
	return drift
}
