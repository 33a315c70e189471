package gtfs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/travigo/positionstats/pkg/ctdf"
)

// RealtimeJSON reads vehicle positions already converted from GTFS-RT to JSON with proto
// field names. The document is either an array of vehicle positions or a single one.
// Elements are decoded one by one, an element that does not fit the record shape is kept
// as a DecodeError record instead of failing the document.
type RealtimeJSON struct {
	records []ctdf.RawPositionRecord
}

func (r *RealtimeJSON) ParseFile(reader io.Reader) error {
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	body = bytes.TrimSpace(body)

	var elements []json.RawMessage
	if len(body) > 0 && body[0] == '{' {
		var element json.RawMessage
		if err := json.Unmarshal(body, &element); err != nil {
			return err
		}

		elements = []json.RawMessage{element}
	} else if err := json.Unmarshal(body, &elements); err != nil {
		return err
	}

	r.records = make([]ctdf.RawPositionRecord, 0, len(elements))

	malformed := 0
	for index, element := range elements {
		var record ctdf.RawPositionRecord
		if err := json.Unmarshal(element, &record); err != nil {
			malformed += 1
			record = ctdf.RawPositionRecord{
				DecodeError: fmt.Errorf("record %d: %w", index, err),
			}
		}

		r.records = append(r.records, record)
	}

	if malformed > 0 {
		log.Debug().Int("malformed", malformed).Int("total", len(elements)).Msg("Kept undecodable records for rejection")
	}

	return nil
}

func (r *RealtimeJSON) Records() []ctdf.RawPositionRecord {
	return r.records
}
