// Package influxdb writes publish telemetry to InfluxDB v2.
//
// Each publish attempt becomes one point in the "publish" measurement:
//
//	publish,topic=topology,kind=text,status=ok bytes=412i,duration_ms=1.8
//
// Writes use the client's non-blocking batched API, so a slow or absent
// InfluxDB never delays publishing. Asynchronous write failures are passed
// to the callback set with SetOnError.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	defer client.Close()
package influxdb
