package gtfs

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/positionstats/pkg/ctdf"
	"google.golang.org/protobuf/proto"
)

func TestRealtimeWidensToShortestDecimal(t *testing.T) {
	record := convertVehiclePosition(&gtfs.VehiclePosition{
		Vehicle: &gtfs.VehicleDescriptor{Id: proto.String("V1")},
		Position: &gtfs.Position{
			Latitude:  proto.Float32(3.1390),
			Longitude: proto.Float32(101.6869),
			Speed:     proto.Float32(12.3),
		},
		Timestamp: proto.Uint64(10),
	})

	require.NotNil(t, record.Position)
	assert.Equal(t, 12.3, *record.Position.Speed)
	assert.Equal(t, 3.139, *record.Position.Latitude)
	assert.Equal(t, 101.6869, *record.Position.Longitude)
	assert.Nil(t, record.Position.Bearing)
	assert.Equal(t, "12.3", strconv.FormatFloat(*record.Position.Speed, 'f', -1, 64))
}

func TestRealtimeAndJSONAgree(t *testing.T) {
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("1"),
				Vehicle: &gtfs.VehiclePosition{
					Vehicle: &gtfs.VehicleDescriptor{Id: proto.String("V1")},
					Position: &gtfs.Position{
						Latitude:  proto.Float32(3.1),
						Longitude: proto.Float32(101.6),
						Speed:     proto.Float32(12.3),
						Bearing:   proto.Float32(271.7),
					},
					Timestamp: proto.Uint64(10),
				},
			},
		},
	}
	body, err := proto.Marshal(feed)
	require.NoError(t, err)

	fromProtobuf := &Realtime{}
	require.NoError(t, fromProtobuf.ParseFile(bytes.NewReader(body)))

	fromJSON := &RealtimeJSON{}
	require.NoError(t, fromJSON.ParseFile(bytes.NewReader([]byte(
		`[{"vehicle": {"id": "V1"}, "position": {"latitude": 3.1, "longitude": 101.6, "speed": 12.3, "bearing": 271.7}, "timestamp": "10"}]`,
	))))

	assert.Equal(t, fromJSON.Records(), fromProtobuf.Records())
}

func TestRealtimeJSONKeepsMalformedElements(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{name: "numeric vehicle id", document: `[{"vehicle": {"id": "V1"}, "timestamp": "10"}, {"vehicle": {"id": 42}, "timestamp": "11"}]`},
		{name: "string speed", document: `[{"vehicle": {"id": "V1"}, "timestamp": "10"}, {"vehicle": {"id": "V2"}, "position": {"speed": "fast"}, "timestamp": "11"}]`},
		{name: "scalar element", document: `[{"vehicle": {"id": "V1"}, "timestamp": "10"}, 7]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &RealtimeJSON{}
			require.NoError(t, parser.ParseFile(bytes.NewReader([]byte(tt.document))))

			records := parser.Records()
			require.Len(t, records, 2)
			assert.NoError(t, records[0].DecodeError)
			assert.Equal(t, "V1", records[0].Vehicle.ID)
			assert.Error(t, records[1].DecodeError)
			assert.Nil(t, records[1].Vehicle)

			normalized, stats := ctdf.Normalize(records)
			assert.Len(t, normalized, 1)
			assert.Equal(t, 1, stats.Rejected[ctdf.RejectionReasonMalformedRecord])
		})
	}
}

func TestRealtimeJSONDocumentErrors(t *testing.T) {
	for _, document := range []string{`[{"vehicle": `, `{"vehicle": `, `"positions"`, `[1, 2`} {
		t.Run(document, func(t *testing.T) {
			parser := &RealtimeJSON{}
			assert.Error(t, parser.ParseFile(bytes.NewReader([]byte(document))))
		})
	}
}

func TestRealtimeJSONSingleObject(t *testing.T) {
	parser := &RealtimeJSON{}
	require.NoError(t, parser.ParseFile(bytes.NewReader([]byte(`{"vehicle": {"id": "V9"}, "timestamp": 5}`))))

	require.Len(t, parser.Records(), 1)
	assert.Equal(t, ctdf.RawTimestamp("5"), parser.Records()[0].Timestamp)
}
