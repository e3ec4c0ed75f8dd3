package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/nerrad567/homesim/internal/schedule"
)

const defaultLogLimit = 50

// sensorRequest is the request body for POST /sensor.
type sensorRequest struct {
	Value *int `json:"value"`
}

// createTaskRequest is the request body for POST /tasks.
type createTaskRequest struct {
	Device  string `json:"device"`
	On      bool   `json:"on"`
	Trigger string `json:"trigger"`
	Seconds int    `json:"seconds"`
}

// tickRequest is the optional request body for POST /clock/tick.
type tickRequest struct {
	Seconds int `json:"seconds"`
}

// handleSensor broadcasts a reading to every device.
func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	var req sensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Value == nil {
		writeBadRequest(w, `"value" is required`)
		return
	}

	if err := s.controller.Sensor(r.Context(), *req.Value); err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"value": *req.Value})
}

// handleListTasks returns the scheduled tasks.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.controller.Tasks(r.Context())
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	if tasks == nil {
		tasks = []schedule.TaskInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// handleCreateTask schedules a state change.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Device == "" {
		writeBadRequest(w, `"device" is required`)
		return
	}

	id, err := s.controller.Schedule(r.Context(), req.Device, req.On, req.Trigger, req.Seconds)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// handleClearTasks drops every task and rewinds the clock.
func (s *Server) handleClearTasks(w http.ResponseWriter, r *http.Request) {
	n, err := s.controller.ClearTasks(r.Context())
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": n})
}

// handleTick advances the clock. An empty body advances one second.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	req := tickRequest{Seconds: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	view, err := s.controller.Tick(r.Context(), req.Seconds)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleStatus returns the simulator summary.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.controller.Status(r.Context())
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleLogs returns recent activity, newest last. ?limit= bounds the count.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	entries, err := s.controller.Logs(r.Context(), limit)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleReadings returns recent sensor readings, newest last.
func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	readings, err := s.controller.Readings(r.Context(), limit)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"readings": readings,
		"count":    len(readings),
	})
}

// queryLimit parses ?limit=, defaulting to defaultLogLimit. It writes a 400
// and returns false when the value is not a positive integer.
func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLogLimit, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		writeBadRequest(w, "limit must be a positive integer")
		return 0, false
	}
	return n, true
}
