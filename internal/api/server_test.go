package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/homesim/internal/activity"
	"github.com/nerrad567/homesim/internal/auth"
	"github.com/nerrad567/homesim/internal/console"
	"github.com/nerrad567/homesim/internal/device"
	"github.com/nerrad567/homesim/internal/infrastructure/config"
	"github.com/nerrad567/homesim/internal/infrastructure/logging"
	"github.com/nerrad567/homesim/internal/schedule"
	"github.com/nerrad567/homesim/internal/sensor"
)

const (
	testSecret = "test-secret-key-for-jwt-signing-0123456789"
	testAPIKey = "test-api-key"
)

type testEnv struct {
	server  *Server
	handler http.Handler
	hub     *Hub
}

// newTestEnv runs a real console loop behind the API with three devices.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.Discard()
	hub := NewHub(config.WebSocketConfig{}, logger)

	registry := device.NewRegistry()
	broadcaster := sensor.NewBroadcaster()
	c := console.New(console.Deps{
		Registry:    registry,
		Scheduler:   schedule.New(registry),
		Broadcaster: broadcaster,
		Recorder:    activity.NewRecorder(activity.NewHistory(100), nil),
		Listeners:   []device.Listener{hub},
	})
	broadcaster.Subscribe(hub)

	for _, seed := range []struct {
		kind device.Kind
		name string
	}{
		{device.KindLight, "Lamp"},
		{device.KindFan, "Bedroom Fan"},
		{device.KindThermostat, "Thermo"},
	} {
		if _, err := c.AddDevice(seed.kind, seed.name); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	inR, inW := io.Pipe()
	done := make(chan struct{})
	go func() {
		c.Run(ctx, inR, nil) //nolint:errcheck // returns nil on cancel
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		inW.Close()
		<-done
	})

	srv, err := New(Deps{
		Logger:     logger,
		Controller: c,
		Hub:        hub,
		Security: config.SecurityConfig{
			JWT:    config.JWTConfig{Secret: testSecret, AccessTokenTTL: 15},
			APIKey: testAPIKey,
		},
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &testEnv{server: srv, handler: srv.Handler(), hub: hub}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) token(t *testing.T, role auth.Role) string {
	t.Helper()
	rec := e.request(t, http.MethodPost, "/api/v1/auth/token", "", map[string]any{
		"api_key": testAPIKey,
		"client":  "test",
		"role":    role,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("token status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp tokenResponse
	decode(t, rec, &resp)
	return resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v (body %q)", err, rec.Body.String())
	}
}

func TestNewRequiresDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() without logger should fail")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New() without controller should fail")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestTokenExchange(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong key", map[string]any{"api_key": "nope"}, http.StatusUnauthorized},
		{"missing key", map[string]any{}, http.StatusUnauthorized},
		{"unknown role", map[string]any{"api_key": testAPIKey, "role": "root"}, http.StatusBadRequest},
		{"default role", map[string]any{"api_key": testAPIKey}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodPost, "/api/v1/auth/token", "", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	rec := env.request(t, http.MethodPost, "/api/v1/auth/token", "", map[string]any{"api_key": testAPIKey})
	var resp tokenResponse
	decode(t, rec, &resp)
	if resp.Role != auth.RoleOperator || resp.TokenType != "Bearer" || resp.ExpiresIn != 900 {
		t.Errorf("response = %+v", resp)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.token(t, auth.RoleViewer)

	if rec := env.request(t, http.MethodGet, "/api/v1/devices", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}
	if rec := env.request(t, http.MethodGet, "/api/v1/devices", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}
	if rec := env.request(t, http.MethodGet, "/api/v1/devices", viewer, nil); rec.Code != http.StatusOK {
		t.Errorf("viewer read status = %d, want 200", rec.Code)
	}

	forbidden := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/devices/Lamp/toggle"},
		{http.MethodPost, "/api/v1/devices"},
		{http.MethodPost, "/api/v1/sensor"},
		{http.MethodPost, "/api/v1/clock/tick"},
		{http.MethodDelete, "/api/v1/tasks"},
	}
	for _, f := range forbidden {
		if rec := env.request(t, f.method, f.path, viewer, nil); rec.Code != http.StatusForbidden {
			t.Errorf("viewer %s %s status = %d, want 403", f.method, f.path, rec.Code)
		}
	}
}

func TestDeviceEndpoints(t *testing.T) {
	env := newTestEnv(t)
	op := env.token(t, auth.RoleOperator)

	rec := env.request(t, http.MethodGet, "/api/v1/devices", op, nil)
	var list struct {
		Devices []console.DeviceView `json:"devices"`
		Count   int                  `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 3 || list.Devices[2].Policy != "eco" || list.Devices[2].Setpoint != 68 {
		t.Errorf("list = %+v", list)
	}

	rec = env.request(t, http.MethodPost, "/api/v1/devices/Bedroom%20Fan/toggle", op, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, body %s", rec.Code, rec.Body.String())
	}
	var view console.DeviceView
	decode(t, rec, &view)
	if view.Name != "Bedroom Fan" || !view.On || view.State != "ON" {
		t.Errorf("toggle view = %+v", view)
	}

	rec = env.request(t, http.MethodGet, "/api/v1/devices/Bedroom%20Fan", op, nil)
	decode(t, rec, &view)
	if !view.On {
		t.Error("GET after toggle shows OFF")
	}

	if rec := env.request(t, http.MethodGet, "/api/v1/devices/Nope", op, nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown device status = %d, want 404", rec.Code)
	}
	if rec := env.request(t, http.MethodPost, "/api/v1/devices/Nope/toggle", op, nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown toggle status = %d, want 404", rec.Code)
	}
}

func TestSetDeviceState(t *testing.T) {
	env := newTestEnv(t)
	op := env.token(t, auth.RoleOperator)

	if rec := env.request(t, http.MethodPut, "/api/v1/devices/Lamp/state", op, map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing on status = %d, want 400", rec.Code)
	}

	var resp struct {
		Device  console.DeviceView `json:"device"`
		Changed bool               `json:"changed"`
	}
	rec := env.request(t, http.MethodPut, "/api/v1/devices/Lamp/state", op, map[string]any{"on": true})
	decode(t, rec, &resp)
	if !resp.Changed || !resp.Device.On {
		t.Errorf("first set = %+v", resp)
	}

	rec = env.request(t, http.MethodPut, "/api/v1/devices/Lamp/state", op, map[string]any{"on": true})
	decode(t, rec, &resp)
	if resp.Changed {
		t.Error("setting the same state reported a change")
	}
}

func TestCreateDevice(t *testing.T) {
	env := newTestEnv(t)
	op := env.token(t, auth.RoleOperator)

	rec := env.request(t, http.MethodPost, "/api/v1/devices", op, map[string]any{"type": "toaster", "name": "Kitchen"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid type status = %d, want 400", rec.Code)
	}

	rec = env.request(t, http.MethodPost, "/api/v1/devices", op, map[string]any{"type": "thermostat", "name": "Hall"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var view console.DeviceView
	decode(t, rec, &view)
	if view.Kind != device.KindThermostat || view.Policy != "eco" {
		t.Errorf("created = %+v", view)
	}
}

func TestSimulationEndpoints(t *testing.T) {
	env := newTestEnv(t)
	op := env.token(t, auth.RoleOperator)

	rec := env.request(t, http.MethodPost, "/api/v1/tasks", op, map[string]any{
		"device": "Lamp", "on": true, "trigger": "one-time", "seconds": 2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task status = %d, body %s", rec.Code, rec.Body.String())
	}

	badTasks := []map[string]any{
		{"device": "Lamp", "on": true, "trigger": "weekly", "seconds": 2},
		{"device": "Lamp", "on": true, "trigger": "periodic", "seconds": 0},
		{"on": true, "trigger": "periodic", "seconds": 2},
	}
	for _, body := range badTasks {
		if rec := env.request(t, http.MethodPost, "/api/v1/tasks", op, body); rec.Code != http.StatusBadRequest {
			t.Errorf("task %v status = %d, want 400", body, rec.Code)
		}
	}

	rec = env.request(t, http.MethodPost, "/api/v1/clock/tick", op, map[string]any{"seconds": 3})
	var tick console.TickView
	decode(t, rec, &tick)
	if tick.Clock != 3 || len(tick.Reports) != 3 || len(tick.Reports[1].Applied) != 1 {
		t.Errorf("tick = %+v", tick)
	}

	// An empty body advances one second.
	rec = env.request(t, http.MethodPost, "/api/v1/clock/tick", op, nil)
	decode(t, rec, &tick)
	if tick.Clock != 4 {
		t.Errorf("clock = %d, want 4", tick.Clock)
	}
	if rec := env.request(t, http.MethodPost, "/api/v1/clock/tick", op, map[string]any{"seconds": 0}); rec.Code != http.StatusBadRequest {
		t.Errorf("zero tick status = %d, want 400", rec.Code)
	}

	rec = env.request(t, http.MethodGet, "/api/v1/tasks", op, nil)
	var tasks struct {
		Tasks []schedule.TaskInfo `json:"tasks"`
	}
	decode(t, rec, &tasks)
	if len(tasks.Tasks) != 1 || !tasks.Tasks[0].Completed || tasks.Tasks[0].LastFiredAt != 2 {
		t.Errorf("tasks = %+v", tasks.Tasks)
	}

	if rec := env.request(t, http.MethodPost, "/api/v1/sensor", op, map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Errorf("sensor without value status = %d, want 400", rec.Code)
	}
	if rec := env.request(t, http.MethodPost, "/api/v1/sensor", op, map[string]any{"value": 29}); rec.Code != http.StatusAccepted {
		t.Errorf("sensor status = %d, want 202", rec.Code)
	}

	rec = env.request(t, http.MethodGet, "/api/v1/status", op, nil)
	var status console.StatusView
	decode(t, rec, &status)
	if status.Clock != 4 || status.Devices != 3 || status.Tasks != 1 || status.Pending != 0 {
		t.Errorf("status = %+v", status)
	}
	if status.LastReading == nil || *status.LastReading != 29 {
		t.Errorf("last reading = %v", status.LastReading)
	}

	rec = env.request(t, http.MethodDelete, "/api/v1/tasks", op, nil)
	var cleared map[string]int
	decode(t, rec, &cleared)
	if cleared["cleared"] != 1 {
		t.Errorf("cleared = %v", cleared)
	}
	rec = env.request(t, http.MethodGet, "/api/v1/status", op, nil)
	decode(t, rec, &status)
	if status.Clock != 0 || status.Tasks != 0 {
		t.Errorf("status after clear = %+v", status)
	}
}

func TestLogsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	op := env.token(t, auth.RoleOperator)

	env.request(t, http.MethodPost, "/api/v1/devices/Lamp/toggle", op, nil)
	env.request(t, http.MethodPost, "/api/v1/sensor", op, map[string]any{"value": 30})

	rec := env.request(t, http.MethodGet, "/api/v1/logs?limit=5", op, nil)
	var resp struct {
		Entries []activity.Entry `json:"entries"`
	}
	decode(t, rec, &resp)
	if len(resp.Entries) != 2 {
		t.Fatalf("entries = %+v", resp.Entries)
	}
	if resp.Entries[0].Device != "Lamp" || resp.Entries[0].Source != activity.SourceAPI {
		t.Errorf("first entry = %+v", resp.Entries[0])
	}
	if resp.Entries[1].Device != "Bedroom Fan" || resp.Entries[1].Source != activity.SourceSensor {
		t.Errorf("second entry = %+v", resp.Entries[1])
	}

	for _, q := range []string{"abc", "0", "-1"} {
		if rec := env.request(t, http.MethodGet, "/api/v1/logs?limit="+q, op, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", q, rec.Code)
		}
	}
}

func TestDeviceLogsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	op := env.token(t, auth.RoleOperator)
	viewer := env.token(t, auth.RoleViewer)

	env.request(t, http.MethodPost, "/api/v1/devices/Lamp/toggle", op, nil)
	env.request(t, http.MethodPost, "/api/v1/devices/Bedroom%20Fan/toggle", op, nil)
	env.request(t, http.MethodPost, "/api/v1/devices/Lamp/toggle", op, nil)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantOn   []bool
	}{
		{"all for device", "/api/v1/devices/Lamp/logs", http.StatusOK, []bool{true, false}},
		{"limited", "/api/v1/devices/Lamp/logs?limit=1", http.StatusOK, []bool{false}},
		{"other device", "/api/v1/devices/Bedroom%20Fan/logs", http.StatusOK, []bool{true}},
		{"unknown device", "/api/v1/devices/Nope/logs", http.StatusNotFound, nil},
		{"bad limit", "/api/v1/devices/Lamp/logs?limit=0", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodGet, tt.path, viewer, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp struct {
				Entries []activity.Entry `json:"entries"`
				Count   int              `json:"count"`
			}
			decode(t, rec, &resp)
			if resp.Count != len(tt.wantOn) || len(resp.Entries) != len(tt.wantOn) {
				t.Fatalf("entries = %+v, want %d", resp.Entries, len(tt.wantOn))
			}
			for i, e := range resp.Entries {
				if e.On != tt.wantOn[i] || e.Source != activity.SourceAPI {
					t.Errorf("entry %d = %+v, want on=%v from api", i, e, tt.wantOn[i])
				}
			}
		})
	}
}

func TestSensorReadingsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	op := env.token(t, auth.RoleOperator)
	viewer := env.token(t, auth.RoleViewer)

	rec := env.request(t, http.MethodGet, "/api/v1/sensor/readings", viewer, nil)
	var resp struct {
		Readings []activity.Reading `json:"readings"`
		Count    int                `json:"count"`
	}
	decode(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("readings before any sensor = %+v", resp.Readings)
	}

	for _, v := range []int{12, 29, 31} {
		env.request(t, http.MethodPost, "/api/v1/sensor", op, map[string]any{"value": v})
	}

	rec = env.request(t, http.MethodGet, "/api/v1/sensor/readings?limit=2", viewer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &resp)
	if resp.Count != 2 || resp.Readings[0].Value != 29 || resp.Readings[1].Value != 31 {
		t.Errorf("readings = %+v, want 29 then 31", resp.Readings)
	}

	if rec := env.request(t, http.MethodGet, "/api/v1/sensor/readings?limit=x", viewer, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
	if rec := env.request(t, http.MethodGet, "/api/v1/sensor/readings", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}
}

// stoppedController fails every call as a console that has exited would.
type stoppedController struct{ Controller }

func (stoppedController) Status(context.Context) (console.StatusView, error) {
	return console.StatusView{}, console.ErrStopped
}

func TestStoppedControllerUnavailable(t *testing.T) {
	srv, err := New(Deps{
		Logger:     logging.Discard(),
		Controller: stoppedController{},
		Security:   config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret}, APIKey: testAPIKey},
	})
	if err != nil {
		t.Fatal(err)
	}
	token, err := auth.GenerateAccessToken("test", auth.RoleViewer, testSecret, 5)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealthCheckBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	if err := env.server.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start should fail")
	}
	if err := env.server.Close(); err != nil {
		t.Errorf("Close() before Start = %v", err)
	}
}
