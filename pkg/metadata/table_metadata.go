package metadata

// TableRef identifies a table returned by catalog enumeration.
type TableRef struct {
	Database string
	Name     string
}

func (t TableRef) String() string {
	return t.Database + "." + t.Name
}

// TableDescriptor holds the catalog facts extracted for one table.
type TableDescriptor struct {
	Database      string
	Table         string
	RawLocation   string
	StorageFormat string
}

func (t *TableDescriptor) String() string {
	return t.Database + "." + t.Table
}

// MetadataRecord is the normalized metadata row persisted per table.
type MetadataRecord struct {
	Database            string `json:"database"`
	Table               string `json:"table"`
	PartitionString     string `json:"partition_string"`
	StorageFormat       string `json:"format"`
	SourceLocation      string `json:"hdfs_path"`
	DestinationLocation string `json:"gcs_raw_zone_path"`
}

// MetadataColumns lists the persisted column names in row order.
var MetadataColumns = []string{"database", "table", "partition_string", "format", "hdfs_path", "gcs_raw_zone_path"}

// Values returns the record as a row ordered like MetadataColumns.
func (r MetadataRecord) Values() []string {
	return []string{r.Database, r.Table, r.PartitionString, r.StorageFormat, r.SourceLocation, r.DestinationLocation}
}
