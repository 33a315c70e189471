package ctdf

import "time"

const (
	ViewVehicleLatest = "vehicle_latest"
	ViewRouteMetrics  = "route_metrics"
	ViewTripMetrics   = "trip_metrics"
)

var ViewNames = []string{ViewVehicleLatest, ViewRouteMetrics, ViewTripMetrics}

// Output rows. Column names and order are consumed verbatim by downstream queries.
// Empty strings and nil pointers are written as nulls.

type VehicleLatestSnapshot struct {
	RouteID       string `csv:"route_id" parquet:"route_id,optional"`
	TripID        string `csv:"trip_id" parquet:"trip_id,optional"`
	TripStartTime string `csv:"trip_start_time" parquet:"trip_start_time,optional"`
	TripStartDate string `csv:"trip_start_date" parquet:"trip_start_date,optional"`
	VehicleID     string `csv:"vehicle_id" parquet:"vehicle_id"`
	LicensePlate  string `csv:"license_plate" parquet:"license_plate,optional"`

	Latitude  *float64 `csv:"latitude" parquet:"latitude,optional"`
	Longitude *float64 `csv:"longitude" parquet:"longitude,optional"`
	Speed     *float64 `csv:"speed" parquet:"speed,optional"`
	Bearing   *float64 `csv:"bearing" parquet:"bearing,optional"`

	LastUpdate time.Time `csv:"last_update" parquet:"last_update"`
}

type RouteMetrics struct {
	RouteID string `csv:"route_id" parquet:"route_id"`

	VehicleCount int64 `csv:"vehicle_count" parquet:"vehicle_count"`
	TripCount    int64 `csv:"trip_count" parquet:"trip_count"`

	AvgSpeed *float64 `csv:"avg_speed" parquet:"avg_speed,optional"`
	MaxSpeed *float64 `csv:"max_speed" parquet:"max_speed,optional"`
	MinSpeed *float64 `csv:"min_speed" parquet:"min_speed,optional"`

	LastUpdate time.Time `csv:"last_update" parquet:"last_update"`
}

type TripMetrics struct {
	TripID    string `csv:"trip_id" parquet:"trip_id"`
	RouteID   string `csv:"route_id" parquet:"route_id,optional"`
	StartTime string `csv:"start_time" parquet:"start_time,optional"`
	StartDate string `csv:"start_date" parquet:"start_date,optional"`

	VehicleCount int64 `csv:"vehicle_count" parquet:"vehicle_count"`

	AvgSpeed *float64 `csv:"avg_speed" parquet:"avg_speed,optional"`
	MaxSpeed *float64 `csv:"max_speed" parquet:"max_speed,optional"`
	MinSpeed *float64 `csv:"min_speed" parquet:"min_speed,optional"`

	GPSPoints int64 `csv:"gps_points" parquet:"gps_points"`

	LastUpdate time.Time `csv:"last_update" parquet:"last_update"`
}
