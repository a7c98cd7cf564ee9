package metadata

import (
	"strings"

	"github.com/arnkore/hive-ddl-extractor/pkg/common"
	"github.com/arnkore/hive-ddl-extractor/pkg/partition"
)

const (
	DefaultSourceScheme = "hdfs"
	RawZoneSubpath      = "RawZone/"
	schemeSeparator     = "://"
)

// LocationRewriter maps a source filesystem URI into the target storage system.
// The source scheme is dropped and the authority and path are kept under Root:
//
//	hdfs://nn:8020/warehouse/db/t -> gs://bucket/RawZone/nn:8020/warehouse/db/t
type LocationRewriter struct {
	Root string
	// SourceScheme restricts accepted sources; empty accepts any scheme.
	SourceScheme string
}

// NewRawZoneRewriter returns a rewriter rooted at gs://<bucket>/RawZone/ that accepts hdfs sources.
func NewRawZoneRewriter(bucket string) LocationRewriter {
	return LocationRewriter{
		Root:         "gs://" + strings.Trim(bucket, "/") + "/" + RawZoneSubpath,
		SourceScheme: DefaultSourceScheme,
	}
}

// Rewrite returns the destination location for source.
func (rw LocationRewriter) Rewrite(source string) (string, error) {
	i := strings.Index(source, schemeSeparator)
	if i <= 0 || i+len(schemeSeparator) == len(source) {
		return "", &common.UnsupportedLocationSchemeError{Location: source, Scheme: rw.SourceScheme}
	}
	if rw.SourceScheme != "" && !strings.EqualFold(source[:i], rw.SourceScheme) {
		return "", &common.UnsupportedLocationSchemeError{Location: source, Scheme: rw.SourceScheme}
	}

	root := rw.Root
	if root != "" && !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root + source[i+len(schemeSeparator):], nil
}

// BuildRecord combines a table descriptor and its partition spec into a metadata record.
func BuildRecord(desc TableDescriptor, spec partition.Spec, rw LocationRewriter) (MetadataRecord, error) {
	destination, err := rw.Rewrite(desc.RawLocation)
	if err != nil {
		return MetadataRecord{}, err
	}
	return MetadataRecord{
		Database:            desc.Database,
		Table:               desc.Table,
		PartitionString:     spec.String(),
		StorageFormat:       desc.StorageFormat,
		SourceLocation:      desc.RawLocation,
		DestinationLocation: destination,
	}, nil
}
