package ctdf

import (
	"encoding/json"
	"time"
)

// RawPositionRecord is a single vehicle position observation as it arrives from a feed document.
// The shape follows the GTFS-RT VehiclePosition message rendered with proto field names.
type RawPositionRecord struct {
	Trip     *RawPositionTrip     `json:"trip,omitempty"`
	Vehicle  *RawPositionVehicle  `json:"vehicle,omitempty"`
	Position *RawPositionPosition `json:"position,omitempty"`

	Timestamp RawTimestamp `json:"timestamp,omitempty"`

	// DecodeError is set when the record itself could not be decoded from its document.
	// Such records carry no other fields and are always rejected.
	DecodeError error `json:"-"`
}

type RawPositionTrip struct {
	TripID    string `json:"trip_id,omitempty"`
	RouteID   string `json:"route_id,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	StartDate string `json:"start_date,omitempty"`
}

type RawPositionVehicle struct {
	ID           string `json:"id,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
}

type RawPositionPosition struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Bearing   *float64 `json:"bearing,omitempty"`
}

// RawTimestamp holds the timestamp token exactly as it appeared in the source document.
// Protobuf JSON renders uint64 as a string, hand written feeds tend to use a number.
type RawTimestamp string

func (t *RawTimestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err == nil {
		*t = RawTimestamp(value)
		return nil
	}

	*t = RawTimestamp(data)
	return nil
}

// NormalizedRecord is the flat form every downstream calculation works on.
// VehicleID and EventTime are always set.
type NormalizedRecord struct {
	VehicleID    string
	LicensePlate string

	TripID        string
	RouteID       string
	TripStartTime string
	TripStartDate string

	Latitude  *float64
	Longitude *float64
	Speed     *float64
	Bearing   *float64

	EventTime time.Time
}

func (r *NormalizedRecord) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}
