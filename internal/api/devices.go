package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// createDeviceRequest is the request body for POST /devices.
type createDeviceRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// setStateRequest is the request body for PUT /devices/{name}/state.
type setStateRequest struct {
	On *bool `json:"on"`
}

// handleListDevices returns every device in registry order.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.controller.Devices(r.Context())
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleCreateDevice adds a Light, Fan or Thermostat.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	view, err := s.controller.CreateDevice(r.Context(), req.Type, req.Name)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// handleGetDevice returns one device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	name, ok := deviceName(w, r)
	if !ok {
		return
	}
	view, err := s.controller.Device(r.Context(), name)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeviceLogs returns recent activity for one device, newest last.
func (s *Server) handleDeviceLogs(w http.ResponseWriter, r *http.Request) {
	name, ok := deviceName(w, r)
	if !ok {
		return
	}
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	entries, err := s.controller.DeviceLogs(r.Context(), name, limit)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device":  name,
		"entries": entries,
		"count":   len(entries),
	})
}

// handleToggleDevice flips a device and returns its new state.
func (s *Server) handleToggleDevice(w http.ResponseWriter, r *http.Request) {
	name, ok := deviceName(w, r)
	if !ok {
		return
	}
	view, err := s.controller.Toggle(r.Context(), name)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleSetDeviceState drives a device to the requested state.
func (s *Server) handleSetDeviceState(w http.ResponseWriter, r *http.Request) {
	name, ok := deviceName(w, r)
	if !ok {
		return
	}

	var req setStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.On == nil {
		writeBadRequest(w, `"on" is required`)
		return
	}

	view, changed, err := s.controller.SetState(r.Context(), name, *req.On)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device":  view,
		"changed": changed,
	})
}

// deviceName extracts the {name} path parameter. Names may contain spaces
// and escaped slashes.
func deviceName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeBadRequest(w, "invalid device name")
		return "", false
	}
	return name, true
}
