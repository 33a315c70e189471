package calculator

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/positionstats/pkg/ctdf"
)

func speed(v float64) *float64 {
	return &v
}

func at(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}

func record(vehicleID string, routeID string, tripID string, seconds int64, vehicleSpeed *float64) ctdf.NormalizedRecord {
	return ctdf.NormalizedRecord{
		VehicleID: vehicleID,
		RouteID:   routeID,
		TripID:    tripID,
		Speed:     vehicleSpeed,
		EventTime: at(seconds),
	}
}

func TestSingleVehicleScenario(t *testing.T) {
	records := []ctdf.NormalizedRecord{
		record("V1", "R1", "T1", 10, speed(5)),
		record("V1", "R1", "T1", 20, speed(8)),
		record("V1", "R1", "T1", 15, speed(6)),
	}

	views := Calculate(records)

	require.Len(t, views.VehicleLatest, 1)
	assert.Equal(t, "V1", views.VehicleLatest[0].VehicleID)
	assert.Equal(t, at(20), views.VehicleLatest[0].LastUpdate)
	assert.Equal(t, 8.0, *views.VehicleLatest[0].Speed)

	require.Len(t, views.RouteMetrics, 1)
	route := views.RouteMetrics[0]
	assert.Equal(t, "R1", route.RouteID)
	assert.Equal(t, int64(1), route.VehicleCount)
	assert.Equal(t, int64(1), route.TripCount)
	assert.InDelta(t, 19.0/3.0, *route.AvgSpeed, 1e-9)
	assert.Equal(t, 8.0, *route.MaxSpeed)
	assert.Equal(t, 5.0, *route.MinSpeed)
	assert.Equal(t, at(20), route.LastUpdate)

	require.Len(t, views.TripMetrics, 1)
	trip := views.TripMetrics[0]
	assert.Equal(t, "T1", trip.TripID)
	assert.Equal(t, "R1", trip.RouteID)
	assert.Equal(t, int64(1), trip.VehicleCount)
	assert.Equal(t, int64(3), trip.GPSPoints)
	assert.InDelta(t, 19.0/3.0, *trip.AvgSpeed, 1e-9)
	assert.Equal(t, at(20), trip.LastUpdate)
}

func TestVehicleLatestTieBreakKeepsFirstRecord(t *testing.T) {
	first := record("V1", "R1", "T1", 30, speed(1))
	first.LicensePlate = "FIRST"
	second := record("V1", "R2", "T2", 30, speed(2))
	second.LicensePlate = "SECOND"
	older := record("V1", "R3", "T3", 10, speed(3))

	snapshots := GetVehicleLatest([]ctdf.NormalizedRecord{older, first, second})

	require.Len(t, snapshots, 1)
	assert.Equal(t, "FIRST", snapshots[0].LicensePlate)
	assert.Equal(t, "R1", snapshots[0].RouteID)

	snapshots = GetVehicleLatest([]ctdf.NormalizedRecord{second, first, older})

	require.Len(t, snapshots, 1)
	assert.Equal(t, "SECOND", snapshots[0].LicensePlate)
}

func TestVehicleLatestPartitionCompleteness(t *testing.T) {
	records := []ctdf.NormalizedRecord{
		record("V3", "", "", 5, nil),
		record("V1", "R1", "", 7, speed(3)),
		record("V2", "R1", "T9", 1, nil),
		record("V1", "R1", "", 9, nil),
		record("V3", "", "", 2, speed(4)),
	}

	snapshots := GetVehicleLatest(records)

	maxEventTime := map[string]time.Time{}
	for _, r := range records {
		if r.EventTime.After(maxEventTime[r.VehicleID]) {
			maxEventTime[r.VehicleID] = r.EventTime
		}
	}

	require.Len(t, snapshots, len(maxEventTime))
	var vehicleIDs []string
	for _, snapshot := range snapshots {
		vehicleIDs = append(vehicleIDs, snapshot.VehicleID)
		assert.Equal(t, maxEventTime[snapshot.VehicleID], snapshot.LastUpdate)
	}
	assert.Equal(t, []string{"V1", "V2", "V3"}, vehicleIDs)
}

func TestRouteMetricsNullHandling(t *testing.T) {
	records := []ctdf.NormalizedRecord{
		record("V1", "R1", "T1", 10, nil),
		record("V2", "R1", "", 11, nil),
		record("V3", "", "T2", 12, speed(10)),
		record("V4", "R2", "T3", 13, speed(20)),
		record("V5", "R2", "T3", 14, speed(40)),
		record("V5", "R2", "T4", 9, nil),
	}

	metrics := GetRouteMetrics(records)

	require.Len(t, metrics, 2)

	assert.Equal(t, "R1", metrics[0].RouteID)
	assert.Equal(t, int64(2), metrics[0].VehicleCount)
	assert.Equal(t, int64(1), metrics[0].TripCount)
	assert.Nil(t, metrics[0].AvgSpeed)
	assert.Nil(t, metrics[0].MaxSpeed)
	assert.Nil(t, metrics[0].MinSpeed)
	assert.Equal(t, at(11), metrics[0].LastUpdate)

	assert.Equal(t, "R2", metrics[1].RouteID)
	assert.Equal(t, int64(2), metrics[1].VehicleCount)
	assert.Equal(t, int64(2), metrics[1].TripCount)
	assert.Equal(t, 30.0, *metrics[1].AvgSpeed)
	assert.Equal(t, 40.0, *metrics[1].MaxSpeed)
	assert.Equal(t, 20.0, *metrics[1].MinSpeed)
	assert.Equal(t, at(14), metrics[1].LastUpdate)
}

func TestTripMetricsKeyAndNullHandling(t *testing.T) {
	withoutRoute := record("V1", "", "T1", 10, speed(4))
	withRoute := record("V2", "R1", "T1", 10, speed(6))
	sameRouteLater := record("V3", "R1", "T1", 12, speed(8))
	otherDate := record("V3", "R1", "T1", 12, speed(2))
	otherDate.TripStartDate = "20240102"
	withoutTrip := record("V4", "R1", "", 20, speed(100))

	metrics := GetTripMetrics([]ctdf.NormalizedRecord{withRoute, withoutTrip, sameRouteLater, withoutRoute, otherDate})

	require.Len(t, metrics, 3)

	assert.Equal(t, tripKey{TripID: "T1"}, tripKey{TripID: metrics[0].TripID, RouteID: metrics[0].RouteID, StartTime: metrics[0].StartTime, StartDate: metrics[0].StartDate})
	assert.Equal(t, int64(1), metrics[0].VehicleCount)
	assert.Equal(t, int64(1), metrics[0].GPSPoints)

	assert.Equal(t, "R1", metrics[1].RouteID)
	assert.Equal(t, "", metrics[1].StartDate)
	assert.Equal(t, int64(2), metrics[1].VehicleCount)
	assert.Equal(t, int64(2), metrics[1].GPSPoints)
	assert.Equal(t, 7.0, *metrics[1].AvgSpeed)
	assert.Equal(t, 8.0, *metrics[1].MaxSpeed)
	assert.Equal(t, 6.0, *metrics[1].MinSpeed)
	assert.Equal(t, at(12), metrics[1].LastUpdate)

	assert.Equal(t, "20240102", metrics[2].StartDate)
	assert.Equal(t, int64(1), metrics[2].GPSPoints)

	for _, trip := range metrics {
		assert.NotEqual(t, 100.0, *trip.MaxSpeed)
	}
}

func TestTripMetricsGPSPointsCountsDistinctTimes(t *testing.T) {
	records := []ctdf.NormalizedRecord{
		record("V1", "R1", "T1", 10, speed(1)),
		record("V1", "R1", "T1", 10, speed(1)),
		record("V2", "R1", "T1", 10, speed(1)),
		record("V2", "R1", "T1", 11, speed(1)),
	}

	metrics := GetTripMetrics(records)

	require.Len(t, metrics, 1)
	assert.Equal(t, int64(2), metrics[0].GPSPoints)
	assert.Equal(t, int64(2), metrics[0].VehicleCount)
}

func TestCalculateIsOrderIndependent(t *testing.T) {
	var records []ctdf.NormalizedRecord
	for i := 0; i < 200; i++ {
		vehicleID := []string{"V1", "V2", "V3", "V4"}[i%4]
		routeID := []string{"R1", "R2", ""}[i%3]
		tripID := []string{"T1", "T2", "T3", "T4", ""}[i%5]
		records = append(records, record(vehicleID, routeID, tripID, int64(1000+i*7%50), speed(float64(i%17)*0.1)))
	}

	expected := Calculate(records)

	shuffled := make([]ctdf.NormalizedRecord, len(records))
	copy(shuffled, records)
	random := rand.New(rand.NewPCG(1, 2))
	random.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	actual := Calculate(shuffled)

	assert.Equal(t, expected.RouteMetrics, actual.RouteMetrics)
	assert.Equal(t, expected.TripMetrics, actual.TripMetrics)

	require.Len(t, actual.VehicleLatest, len(expected.VehicleLatest))
	for index := range expected.VehicleLatest {
		assert.Equal(t, expected.VehicleLatest[index].VehicleID, actual.VehicleLatest[index].VehicleID)
		assert.Equal(t, expected.VehicleLatest[index].LastUpdate, actual.VehicleLatest[index].LastUpdate)
	}
}

func TestCalculateEmptyBatch(t *testing.T) {
	views := Calculate(nil)

	assert.NotNil(t, views.VehicleLatest)
	assert.NotNil(t, views.RouteMetrics)
	assert.NotNil(t, views.TripMetrics)
	assert.Empty(t, views.VehicleLatest)
	assert.Empty(t, views.RouteMetrics)
	assert.Empty(t, views.TripMetrics)
}

func TestSignedZeroSpeedsRenderTheSame(t *testing.T) {
	raw := func(speed float64, seconds string) ctdf.RawPositionRecord {
		return ctdf.RawPositionRecord{
			Trip:      &ctdf.RawPositionTrip{TripID: "T1", RouteID: "R1"},
			Vehicle:   &ctdf.RawPositionVehicle{ID: "V1"},
			Position:  &ctdf.RawPositionPosition{Speed: &speed},
			Timestamp: ctdf.RawTimestamp(seconds),
		}
	}
	negativeZero := raw(math.Copysign(0, -1), "1")
	positiveZero := raw(0, "2")

	forward, _ := ctdf.Normalize([]ctdf.RawPositionRecord{negativeZero, positiveZero})
	backward, _ := ctdf.Normalize([]ctdf.RawPositionRecord{positiveZero, negativeZero})

	for _, records := range [][]ctdf.NormalizedRecord{forward, backward} {
		route := GetRouteMetrics(records)
		require.Len(t, route, 1)
		assert.False(t, math.Signbit(*route[0].MinSpeed))
		assert.False(t, math.Signbit(*route[0].MaxSpeed))
		assert.False(t, math.Signbit(*route[0].AvgSpeed))
	}
}
