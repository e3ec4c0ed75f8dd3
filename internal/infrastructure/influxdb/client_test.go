package influxdb_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/homesim/internal/infrastructure/config"
	"github.com/nerrad567/homesim/internal/infrastructure/influxdb"
)

// testConfig matches the local development InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "homesim-dev-token",
		Org:           "homesim",
		Bucket:        "homesim",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// connectOrSkip returns a live client or skips when InfluxDB is not running.
func connectOrSkip(t *testing.T) *influxdb.Client {
	t.Helper()
	client, err := influxdb.Connect(t.Context(), testConfig())
	if err != nil {
		t.Skipf("InfluxDB not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConnectDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnectUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestNilClient(t *testing.T) {
	var client *influxdb.Client

	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() on nil = true")
	}
	// Writes on a nil client are dropped.
	client.WriteDeviceState("Lamp", "Light", true)
	client.Flush()
}

func TestPoints(t *testing.T) {
	at := time.Unix(1700000000, 0)

	tests := []struct {
		name  string
		point       *write.Point
		measurement string
		want        []string
	}{
		{
			name:  "device on",
			point:       influxdb.DeviceStatePoint("Lamp", "Light", true, at),
			measurement: influxdb.MeasurementDeviceState,
			want:        []string{"device_state,", "device=Lamp", "kind=Light", "on=1i", "1700000000"},
		},
		{
			name:  "device off",
			point:       influxdb.DeviceStatePoint("Ceiling Fan", "Fan", false, at),
			measurement: influxdb.MeasurementDeviceState,
			want:        []string{"device=Ceiling\\ Fan", "kind=Fan", "on=0i"},
		},
		{
			name:  "sensor",
			point:       influxdb.SensorReadingPoint(29, at),
			measurement: influxdb.MeasurementSensorReading,
			// Untagged points still encode a comma after the measurement.
			want: []string{"value=29i", "1700000000"},
		},
		{
			name:  "policy",
			point:       influxdb.PolicyPoint("Thermo", "Comfort", 72, at),
			measurement: influxdb.MeasurementPolicy,
			want:        []string{"thermostat_policy,", "device=Thermo", "policy=Comfort", "setpoint_f=72"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.Name(); got != tt.measurement {
				t.Errorf("Name() = %q, want %q", got, tt.measurement)
			}
			if len(tt.point.FieldList()) == 0 {
				t.Error("point has no fields")
			}
			line := write.PointToLineProtocol(tt.point, time.Second)
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("line %q missing %q", line, w)
				}
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	client := connectOrSkip(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestWrites(t *testing.T) {
	client := connectOrSkip(t)

	var writeErr error
	var mu sync.Mutex
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})

	client.WriteDeviceState("test-lamp", "Light", true)
	client.WriteSensorReading(29)
	client.WritePolicy("test-thermo", "Comfort", 72)
	client.WritePoint("console_stats", map[string]string{"site": "test"}, map[string]interface{}{"clock": 3})
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		t.Errorf("write error = %v", writeErr)
	}
}

func TestCloseDisconnects(t *testing.T) {
	client := connectOrSkip(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close = %v, want ErrNotConnected", err)
	}
}
