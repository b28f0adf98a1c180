// Package objectio reads and writes whole files that live either on the local
// disk or in GCS (as gs://bucket/object).
package objectio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const gcsScheme = "gs://"

var ErrNoGCSClient = errors.New("GCS location given but no GCS client configured")

// Location is a local path when Bucket is empty.
type Location struct {
	Bucket string
	Object string
	Path   string
}

func ParseLocation(s string) (Location, error) {
	if !strings.HasPrefix(s, gcsScheme) {
		if s == "" {
			return Location{}, fmt.Errorf("empty location")
		}
		return Location{Path: s}, nil
	}

	rest := strings.TrimPrefix(s, gcsScheme)
	slash := strings.Index(rest, "/")
	if slash <= 0 || slash == len(rest)-1 {
		return Location{}, fmt.Errorf("location %q is not of the form gs://bucket/object", s)
	}
	return Location{Bucket: rest[:slash], Object: rest[slash+1:]}, nil
}

func (l Location) IsRemote() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsRemote() {
		return gcsScheme + l.Bucket + "/" + l.Object
	}
	return l.Path
}

// Store fronts the local filesystem and, optionally, GCS.
type Store struct {
	gcs *storage.Client
}

// New returns a Store.  gcs may be nil if only local locations are used.
func New(gcs *storage.Client) *Store {
	return &Store{gcs: gcs}
}

func (s *Store) ReadAll(ctx context.Context, loc Location) ([]byte, error) {
	if !loc.IsRemote() {
		data, err := os.ReadFile(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("while reading %s: %w", loc, err)
		}
		return data, nil
	}

	tracer := otel.Tracer("glint/objectio")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Store.ReadAll")
	defer span.End()
	span.SetAttributes(attribute.String("bucket", loc.Bucket), attribute.String("object", loc.Object))

	data, err := s.readGCS(ctx, loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return data, nil
}

func (s *Store) readGCS(ctx context.Context, loc Location) ([]byte, error) {
	if s.gcs == nil {
		return nil, ErrNoGCSClient
	}

	r, err := s.gcs.Bucket(loc.Bucket).Object(loc.Object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("while opening reader for %s: %w", loc, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("while reading from %s: %w", loc, err)
	}
	return data, nil
}

// Write replaces the contents at loc.  contentType is only used for GCS.
func (s *Store) Write(ctx context.Context, loc Location, contentType string, data []byte) error {
	if !loc.IsRemote() {
		if err := os.WriteFile(loc.Path, data, 0644); err != nil {
			return fmt.Errorf("while writing %s: %w", loc, err)
		}
		return nil
	}

	tracer := otel.Tracer("glint/objectio")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Store.Write")
	defer span.End()
	span.SetAttributes(
		attribute.String("bucket", loc.Bucket),
		attribute.String("object", loc.Object),
		attribute.Int("bytes", len(data)),
	)

	if err := s.writeGCS(ctx, loc, contentType, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *Store) writeGCS(ctx context.Context, loc Location, contentType string, data []byte) error {
	if s.gcs == nil {
		return ErrNoGCSClient
	}

	w := s.gcs.Bucket(loc.Bucket).Object(loc.Object).NewWriter(ctx)
	w.ContentType = contentType

	// Frames are small enough to send in one request.
	w.ChunkSize = 0

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("while writing to %s: %w", loc, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing object writer for %s: %w", loc, err)
	}
	return nil
}
