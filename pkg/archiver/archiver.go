package archiver

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/positionstats/pkg/dataimporter"
	"github.com/travigo/positionstats/pkg/objectstore"
	"github.com/ulikunitz/xz"
)

// Archiver bundles the raw documents of a batch into a single tar.xz object next to the
// materialized views.
type Archiver struct {
	Store  objectstore.Store
	Root   string
	Prefix string
}

func (a *Archiver) Key(runTime time.Time) string {
	bundleFilename := fmt.Sprintf("%s.tar.xz", runTime.UTC().Format(time.RFC3339))

	return objectstore.JoinKey(a.Root, a.Prefix, bundleFilename)
}

// Perform writes the bundle and returns its location.
func (a *Archiver) Perform(ctx context.Context, documents []dataimporter.Document, runTime time.Time) (string, error) {
	key := a.Key(runTime)
	location := a.Store.Location(key)

	bundle, err := Bundle(documents, runTime)
	if err != nil {
		return location, fmt.Errorf("bundling archive %s: %w", location, err)
	}

	if err := a.Store.Put(ctx, key, bundle, "application/x-xz"); err != nil {
		return location, fmt.Errorf("writing archive %s: %w", location, err)
	}

	log.Info().
		Str("location", location).
		Int("documents", len(documents)).
		Int("bytes", len(bundle)).
		Msg("Archived batch documents")

	return location, nil
}

// Bundle returns the documents as an xz compressed tar, one entry per document named by
// its key.
func Bundle(documents []dataimporter.Document, modTime time.Time) ([]byte, error) {
	var buffer bytes.Buffer

	xzWriter, err := xz.NewWriter(&buffer)
	if err != nil {
		return nil, err
	}
	tarWriter := tar.NewWriter(xzWriter)

	for _, document := range documents {
		header := &tar.Header{
			Name:     document.Key,
			Mode:     0o644,
			Size:     int64(len(document.Body)),
			ModTime:  modTime.UTC(),
			Typeflag: tar.TypeReg,
			Format:   tar.FormatPAX,
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("tar header for %s: %w", document.Key, err)
		}
		if _, err := tarWriter.Write(document.Body); err != nil {
			return nil, fmt.Errorf("tar entry for %s: %w", document.Key, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}
	if err := xzWriter.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
