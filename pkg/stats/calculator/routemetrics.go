package calculator

import (
	"github.com/travigo/positionstats/pkg/ctdf"
	"golang.org/x/exp/slices"
)

type routeAccumulator struct {
	vehicles distinctSet[string]
	trips    distinctSet[string]
	speed    speedAccumulator

	lastUpdate watermark
}

func (a *routeAccumulator) Add(record *ctdf.NormalizedRecord) {
	a.vehicles.Add(record.VehicleID)
	if record.TripID != "" {
		a.trips.Add(record.TripID)
	}
	a.speed.Add(record.Speed)
	a.lastUpdate.Observe(record.EventTime)
}

// GetRouteMetrics rolls the batch up per route. Records without a route are skipped.
func GetRouteMetrics(records []ctdf.NormalizedRecord) []ctdf.RouteMetrics {
	routes := map[string]*routeAccumulator{}

	for index := range records {
		record := &records[index]
		if record.RouteID == "" {
			continue
		}

		accumulator, exists := routes[record.RouteID]
		if !exists {
			accumulator = &routeAccumulator{
				vehicles: distinctSet[string]{},
				trips:    distinctSet[string]{},
			}
			routes[record.RouteID] = accumulator
		}

		accumulator.Add(record)
	}

	routeIDs := make([]string, 0, len(routes))
	for routeID := range routes {
		routeIDs = append(routeIDs, routeID)
	}
	slices.Sort(routeIDs)

	metrics := make([]ctdf.RouteMetrics, 0, len(routeIDs))
	for _, routeID := range routeIDs {
		accumulator := routes[routeID]
		averageSpeed, maxSpeed, minSpeed := accumulator.speed.Summary()

		metrics = append(metrics, ctdf.RouteMetrics{
			RouteID:      routeID,
			VehicleCount: accumulator.vehicles.Count(),
			TripCount:    accumulator.trips.Count(),
			AvgSpeed:     averageSpeed,
			MaxSpeed:     maxSpeed,
			MinSpeed:     minSpeed,
			LastUpdate:   accumulator.lastUpdate.Time(),
		})
	}

	return metrics
}
