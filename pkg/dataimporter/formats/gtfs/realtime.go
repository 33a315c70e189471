package gtfs

import (
	"io"
	"strconv"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog/log"
	"github.com/travigo/positionstats/pkg/ctdf"
	"google.golang.org/protobuf/proto"
)

// Realtime reads a GTFS-RT FeedMessage. Required proto2 fields are not enforced here,
// incomplete vehicles are left for normalisation to reject.
type Realtime struct {
	records []ctdf.RawPositionRecord
}

func (r *Realtime) ParseFile(reader io.Reader) error {
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	feed := gtfs.FeedMessage{}
	err = proto.UnmarshalOptions{AllowPartial: true}.Unmarshal(body, &feed)
	if err != nil {
		return err
	}

	r.records = make([]ctdf.RawPositionRecord, 0, len(feed.Entity))

	withoutVehicle := 0
	for _, entity := range feed.Entity {
		vehiclePosition := entity.GetVehicle()
		if vehiclePosition == nil {
			withoutVehicle += 1
			continue
		}

		r.records = append(r.records, convertVehiclePosition(vehiclePosition))
	}

	log.Debug().
		Int("vehiclepositions", len(r.records)).
		Int("othertypes", withoutVehicle).
		Int("total", len(feed.Entity)).
		Msg("Parsed GTFS-RT feed")

	return nil
}

func (r *Realtime) Records() []ctdf.RawPositionRecord {
	return r.records
}

func convertVehiclePosition(vehiclePosition *gtfs.VehiclePosition) ctdf.RawPositionRecord {
	record := ctdf.RawPositionRecord{}

	if trip := vehiclePosition.GetTrip(); trip != nil {
		record.Trip = &ctdf.RawPositionTrip{
			TripID:    trip.GetTripId(),
			RouteID:   trip.GetRouteId(),
			StartTime: trip.GetStartTime(),
			StartDate: trip.GetStartDate(),
		}
	}

	if vehicle := vehiclePosition.GetVehicle(); vehicle != nil {
		record.Vehicle = &ctdf.RawPositionVehicle{
			ID:           vehicle.GetId(),
			LicensePlate: vehicle.GetLicensePlate(),
		}
	}

	if position := vehiclePosition.GetPosition(); position != nil {
		record.Position = &ctdf.RawPositionPosition{
			Latitude:  widen(position.Latitude),
			Longitude: widen(position.Longitude),
			Speed:     widen(position.Speed),
			Bearing:   widen(position.Bearing),
		}
	}

	if vehiclePosition.Timestamp != nil {
		record.Timestamp = ctdf.RawTimestamp(strconv.FormatUint(vehiclePosition.GetTimestamp(), 10))
	}

	return record
}

// widen converts through the shortest decimal form of the float32, so a feed value of 12.3
// becomes 12.3 and not 12.300000190734863, matching the same value read from JSON.
func widen(value *float32) *float64 {
	if value == nil {
		return nil
	}

	widened, err := strconv.ParseFloat(strconv.FormatFloat(float64(*value), 'g', -1, 32), 64)
	if err != nil {
		widened = float64(*value)
	}

	return &widened
}
