package dataimporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/positionstats/pkg/ctdf"
	"github.com/travigo/positionstats/pkg/dataimporter/formats"
	"github.com/travigo/positionstats/pkg/dataimporter/formats/gtfs"
	"github.com/travigo/positionstats/pkg/objectstore"
)

// ErrInputUnavailable marks a batch that could not be obtained or decoded as a whole.
var ErrInputUnavailable = errors.New("input unavailable")

type DataSetFormat string

const (
	DataSetFormatGTFSRealtime     DataSetFormat = "gtfs-realtime"
	DataSetFormatGTFSRealtimeJSON DataSetFormat = "gtfs-realtime-json"
)

func FormatForKey(key string) (DataSetFormat, bool) {
	switch strings.ToLower(path.Ext(key)) {
	case ".json":
		return DataSetFormatGTFSRealtimeJSON, true
	case ".pb":
		return DataSetFormatGTFSRealtime, true
	default:
		return "", false
	}
}

func newFormat(format DataSetFormat) formats.Format {
	switch format {
	case DataSetFormatGTFSRealtime:
		return &gtfs.Realtime{}
	default:
		return &gtfs.RealtimeJSON{}
	}
}

type Document struct {
	Key    string
	Format DataSetFormat
	Body   []byte

	RecordCount int
}

type Batch struct {
	Location  string
	Documents []Document
	Records   []ctdf.RawPositionRecord
}

// Load reads every supported document at or below key, in key order, and concatenates
// their records in that order. Any document failing to load fails the whole batch.
func Load(ctx context.Context, store objectstore.Store, key string) (*Batch, error) {
	location := store.Location(key)

	keys, err := store.List(ctx, key)
	if objectstore.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s does not exist", ErrInputUnavailable, location)
	} else if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrInputUnavailable, location, err)
	}

	batch := &Batch{
		Location: location,
	}

	for _, documentKey := range keys {
		format, supported := FormatForKey(documentKey)
		if !supported {
			log.Debug().Str("document", documentKey).Msg("Skipping unsupported document")
			continue
		}

		body, err := store.Get(ctx, documentKey)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrInputUnavailable, store.Location(documentKey), err)
		}

		parser := newFormat(format)
		if err := parser.ParseFile(bytes.NewReader(body)); err != nil {
			return nil, fmt.Errorf("%w: decoding %s as %s: %w", ErrInputUnavailable, store.Location(documentKey), format, err)
		}

		records := parser.Records()
		batch.Records = append(batch.Records, records...)
		batch.Documents = append(batch.Documents, Document{
			Key:         documentKey,
			Format:      format,
			Body:        body,
			RecordCount: len(records),
		})

		log.Info().
			Str("document", documentKey).
			Str("format", string(format)).
			Int("records", len(records)).
			Msg("Loaded batch document")
	}

	if len(batch.Documents) == 0 {
		return nil, fmt.Errorf("%w: no .json or .pb documents at %s", ErrInputUnavailable, location)
	}

	return batch, nil
}
