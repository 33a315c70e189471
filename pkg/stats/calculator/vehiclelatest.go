package calculator

import (
	"github.com/travigo/positionstats/pkg/ctdf"
	"golang.org/x/exp/slices"
)

// GetVehicleLatest selects one record per vehicle, the one with the greatest event time.
// Ties go to the record seen first in input order: a later record only replaces the
// current pick when its event time is strictly after it.
func GetVehicleLatest(records []ctdf.NormalizedRecord) []ctdf.VehicleLatestSnapshot {
	latestIndex := map[string]int{}

	for index := range records {
		vehicleID := records[index].VehicleID

		currentIndex, exists := latestIndex[vehicleID]
		if !exists || records[index].EventTime.After(records[currentIndex].EventTime) {
			latestIndex[vehicleID] = index
		}
	}

	vehicleIDs := make([]string, 0, len(latestIndex))
	for vehicleID := range latestIndex {
		vehicleIDs = append(vehicleIDs, vehicleID)
	}
	slices.Sort(vehicleIDs)

	snapshots := make([]ctdf.VehicleLatestSnapshot, 0, len(vehicleIDs))
	for _, vehicleID := range vehicleIDs {
		snapshots = append(snapshots, newVehicleLatestSnapshot(&records[latestIndex[vehicleID]]))
	}

	return snapshots
}

func newVehicleLatestSnapshot(record *ctdf.NormalizedRecord) ctdf.VehicleLatestSnapshot {
	return ctdf.VehicleLatestSnapshot{
		RouteID:       record.RouteID,
		TripID:        record.TripID,
		TripStartTime: record.TripStartTime,
		TripStartDate: record.TripStartDate,
		VehicleID:     record.VehicleID,
		LicensePlate:  record.LicensePlate,

		Latitude:  record.Latitude,
		Longitude: record.Longitude,
		Speed:     record.Speed,
		Bearing:   record.Bearing,

		LastUpdate: record.EventTime,
	}
}
