// Package influxdb records simulator telemetry in InfluxDB v2.
//
// It wraps the official influxdb-client-go library and writes three
// measurements:
//
//   - device_state: tags device, kind; field on (0/1)
//   - sensor_reading: field value
//   - thermostat_policy: tags device, policy; field setpoint_f
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDeviceState("Lamp", "Light", true)
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Asynchronous write failures are delivered to the
// callback registered with SetOnError. Writes on a disconnected client
// are dropped silently.
package influxdb
