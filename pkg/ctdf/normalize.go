package ctdf

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type RejectionReason string

const (
	RejectionReasonMissingVehicleID RejectionReason = "missing_vehicle_id"
	RejectionReasonInvalidTimestamp RejectionReason = "invalid_timestamp"
	RejectionReasonMalformedRecord  RejectionReason = "malformed_record"
)

type NormalizeStats struct {
	Total    int
	Accepted int
	Rejected map[RejectionReason]int
}

func (s NormalizeStats) RejectedTotal() int {
	total := 0
	for _, count := range s.Rejected {
		total += count
	}

	return total
}

// Normalize flattens the raw records, keeping their input order. Records without a vehicle
// identifier or a usable timestamp are dropped and counted against their reason.
func Normalize(records []RawPositionRecord) ([]NormalizedRecord, NormalizeStats) {
	stats := NormalizeStats{
		Total:    len(records),
		Rejected: map[RejectionReason]int{},
	}
	normalized := make([]NormalizedRecord, 0, len(records))

	for _, record := range records {
		normalizedRecord, reason, ok := NormalizeRecord(record)
		if !ok {
			stats.Rejected[reason] += 1
			continue
		}

		normalized = append(normalized, normalizedRecord)
	}

	stats.Accepted = len(normalized)

	return normalized, stats
}

func NormalizeRecord(record RawPositionRecord) (NormalizedRecord, RejectionReason, bool) {
	if record.DecodeError != nil {
		return NormalizedRecord{}, RejectionReasonMalformedRecord, false
	}

	if record.Vehicle == nil || record.Vehicle.ID == "" {
		return NormalizedRecord{}, RejectionReasonMissingVehicleID, false
	}

	eventTime, ok := ParseEventTime(record.Timestamp)
	if !ok {
		return NormalizedRecord{}, RejectionReasonInvalidTimestamp, false
	}

	normalized := NormalizedRecord{
		VehicleID:    record.Vehicle.ID,
		LicensePlate: record.Vehicle.LicensePlate,
		EventTime:    eventTime,
	}

	if record.Trip != nil {
		normalized.TripID = record.Trip.TripID
		normalized.RouteID = record.Trip.RouteID
		normalized.TripStartTime = record.Trip.StartTime
		normalized.TripStartDate = record.Trip.StartDate
	}

	if record.Position != nil {
		normalized.Latitude = finiteOrNil(record.Position.Latitude)
		normalized.Longitude = finiteOrNil(record.Position.Longitude)
		normalized.Speed = finiteOrNil(record.Position.Speed)
		normalized.Bearing = finiteOrNil(record.Position.Bearing)
	}

	return normalized, "", true
}

// ParseEventTime resolves epoch seconds to a UTC instant. Accepts a decimal integer or an
// integral float (JSON numbers such as 1.7e9). Negative and fractional values are invalid.
func ParseEventTime(raw RawTimestamp) (time.Time, bool) {
	value := strings.TrimSpace(string(raw))
	if value == "" {
		return time.Time{}, false
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds < 0 {
			return time.Time{}, false
		}
		return time.Unix(seconds, 0).UTC(), true
	}

	floatSeconds, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(floatSeconds) || math.IsInf(floatSeconds, 0) {
		return time.Time{}, false
	}
	if floatSeconds < 0 || floatSeconds != math.Trunc(floatSeconds) || floatSeconds >= math.MaxInt64 {
		return time.Time{}, false
	}

	return time.Unix(int64(floatSeconds), 0).UTC(), true
}

func finiteOrNil(value *float64) *float64 {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil
	}

	v := *value
	if v == 0 {
		// folds -0 into 0
		v = 0
	}
	return &v
}
