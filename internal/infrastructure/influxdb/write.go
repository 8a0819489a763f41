package influxdb

import (
	"encoding/json"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/edgelink-io/edgelink-core/internal/jsontree"
)

// telemetryMeasurement is the measurement mirrored telemetry lands in.
const telemetryMeasurement = "telemetry"

// WriteTelemetry mirrors one telemetry document. Scalar leaves become
// fields, nested objects flatten with underscore-joined keys, and arrays
// are skipped (no sensible field mapping). Documents with no usable leaves
// are dropped silently.
//
// The write is non-blocking; transport errors surface via the SetOnError
// callback.
func (c *Client) WriteTelemetry(doc *jsontree.Object) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	fields := map[string]any{}
	flattenFields("", doc, fields)
	if len(fields) == 0 {
		return nil
	}

	point := write.NewPoint(
		telemetryMeasurement,
		map[string]string{"device": c.device},
		fields,
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
	return nil
}

// flattenFields walks the document depth-first, collecting scalar leaves.
func flattenFields(prefix string, obj *jsontree.Object, fields map[string]any) {
	for _, key := range obj.Keys() {
		value, _ := obj.Get(key)
		name := key
		if prefix != "" {
			name = prefix + "_" + key
		}

		switch v := value.(type) {
		case *jsontree.Object:
			flattenFields(name, v, fields)
		case json.Number:
			if f, err := v.Float64(); err == nil {
				fields[name] = f
			}
		case float64, bool, string:
			fields[name] = v
		}
	}
}
