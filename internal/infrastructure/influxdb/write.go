package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	measurementPropulsion = "propulsion"
	modeSail              = "sail"
)

// WriteSailMetric records one sail of a boat.
//
// Parameters:
//   - boat: Boat name, stored as a tag
//   - sequence: 1-based sail count of the boat
//   - at: When the sail happened
func (c *Client) WriteSailMetric(boat string, sequence uint64, at time.Time) {
	c.WritePoint(
		measurementPropulsion,
		map[string]string{
			"boat": boat,
			"mode": modeSail,
		},
		map[string]any{
			"sequence": int64(sequence), //nolint:gosec // sail counts never approach MaxInt64
			"strokes":  int64(1),
		},
		at,
	)
}

// WritePoint queues a point with explicit tags, fields and timestamp.
// Points written while disconnected are dropped.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Indexed key-value pairs (low cardinality)
//   - fields: Key-value pairs holding the data
//   - at: Timestamp of the point
//
// Example:
//
//	client.WritePoint("propulsion",
//	    map[string]string{"boat": "pequod", "mode": "sail"},
//	    map[string]any{"sequence": int64(3), "strokes": int64(1)},
//	    time.Now())
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
