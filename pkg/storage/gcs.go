package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GCSBlobWriter writes DDL objects into a Cloud Storage bucket.
type GCSBlobWriter struct {
	client *gcs.Client
	bucket string
	now    Clock
}

// NewGCSBlobWriter creates a client for bucket. opts typically carry
// option.WithCredentialsJSON; with none, application default credentials apply.
func NewGCSBlobWriter(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSBlobWriter, error) {
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSBlobWriter{client: client, bucket: bucket, now: time.Now}, nil
}

// WriteBlob uploads content as prefix+timestamp and returns the object name.
func (w *GCSBlobWriter) WriteBlob(ctx context.Context, content, prefix string) (string, error) {
	name := ObjectName(prefix, w.now())
	writer := w.client.Bucket(w.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = "text/plain"
	if _, err := io.WriteString(writer, content); err != nil {
		err = fmt.Errorf("copying DDL to gs://%s/%s: %w", w.bucket, name, err)
		if closeErr := writer.Close(); closeErr != nil {
			return "", fmt.Errorf("closing writer: %q, while: %w", closeErr, err)
		}
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing writer for gs://%s/%s: %w", w.bucket, name, err)
	}
	log.WithFields(log.Fields{"bucket": w.bucket, "object": name, "bytes": len(content)}).Info("Uploaded DDL")
	return name, nil
}

// Close releases the underlying client.
func (w *GCSBlobWriter) Close() error {
	return w.client.Close()
}
