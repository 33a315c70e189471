package calculator

import (
	"github.com/sourcegraph/conc"
	"github.com/travigo/positionstats/pkg/ctdf"
)

type Views struct {
	VehicleLatest []ctdf.VehicleLatestSnapshot
	RouteMetrics  []ctdf.RouteMetrics
	TripMetrics   []ctdf.TripMetrics
}

// Calculate produces all three views. The calculations only read records, so they run
// side by side and each writes to its own field.
func Calculate(records []ctdf.NormalizedRecord) Views {
	var views Views
	var wg conc.WaitGroup

	wg.Go(func() {
		views.VehicleLatest = GetVehicleLatest(records)
	})
	wg.Go(func() {
		views.RouteMetrics = GetRouteMetrics(records)
	})
	wg.Go(func() {
		views.TripMetrics = GetTripMetrics(records)
	})

	wg.Wait()

	return views
}
