package calculator

import (
	"cmp"

	"github.com/travigo/positionstats/pkg/ctdf"
	"golang.org/x/exp/slices"
)

// tripKey identifies a trip run. Route, start time and start date may be empty and are
// still part of the key.
type tripKey struct {
	TripID    string
	RouteID   string
	StartTime string
	StartDate string
}

func compareTripKeys(a tripKey, b tripKey) int {
	return cmp.Or(
		cmp.Compare(a.TripID, b.TripID),
		cmp.Compare(a.RouteID, b.RouteID),
		cmp.Compare(a.StartTime, b.StartTime),
		cmp.Compare(a.StartDate, b.StartDate),
	)
}

type tripAccumulator struct {
	vehicles   distinctSet[string]
	eventTimes distinctSet[int64]
	speed      speedAccumulator

	lastUpdate watermark
}

func (a *tripAccumulator) Add(record *ctdf.NormalizedRecord) {
	a.vehicles.Add(record.VehicleID)
	a.eventTimes.Add(record.EventTime.Unix())
	a.speed.Add(record.Speed)
	a.lastUpdate.Observe(record.EventTime)
}

// GetTripMetrics rolls the batch up per trip run. Records without a trip id are skipped.
func GetTripMetrics(records []ctdf.NormalizedRecord) []ctdf.TripMetrics {
	trips := map[tripKey]*tripAccumulator{}

	for index := range records {
		record := &records[index]
		if record.TripID == "" {
			continue
		}

		key := tripKey{
			TripID:    record.TripID,
			RouteID:   record.RouteID,
			StartTime: record.TripStartTime,
			StartDate: record.TripStartDate,
		}

		accumulator, exists := trips[key]
		if !exists {
			accumulator = &tripAccumulator{
				vehicles:   distinctSet[string]{},
				eventTimes: distinctSet[int64]{},
			}
			trips[key] = accumulator
		}

		accumulator.Add(record)
	}

	keys := make([]tripKey, 0, len(trips))
	for key := range trips {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, compareTripKeys)

	metrics := make([]ctdf.TripMetrics, 0, len(keys))
	for _, key := range keys {
		accumulator := trips[key]
		averageSpeed, maxSpeed, minSpeed := accumulator.speed.Summary()

		metrics = append(metrics, ctdf.TripMetrics{
			TripID:       key.TripID,
			RouteID:      key.RouteID,
			StartTime:    key.StartTime,
			StartDate:    key.StartDate,
			VehicleCount: accumulator.vehicles.Count(),
			AvgSpeed:     averageSpeed,
			MaxSpeed:     maxSpeed,
			MinSpeed:     minSpeed,
			GPSPoints:    accumulator.eventTimes.Count(),
			LastUpdate:   accumulator.lastUpdate.Time(),
		})
	}

	return metrics
}
