// Package influxdb writes harbour propulsion telemetry to InfluxDB v2.
//
// Every sail becomes one point:
//
//	propulsion,boat=pequod,mode=sail sequence=3i,strokes=1i <sailed_at>
//
// Writes are non-blocking and batched by the client library. Failures are
// delivered asynchronously to the callback set with SetOnError.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without telemetry
//	}
//	defer client.Close()
//	client.WriteSailMetric("pequod", 3, time.Now())
package influxdb
