package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homesim/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/auth/token", s.handleToken)

		// Authenticated by ticket inside the handler.
		r.Get(s.wsPath(), s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Route("/devices", func(r chi.Router) {
				r.With(s.require(auth.PermDeviceRead)).Get("/", s.handleListDevices)
				r.With(s.require(auth.PermDeviceConfigure)).Post("/", s.handleCreateDevice)

				r.Route("/{name}", func(r chi.Router) {
					r.With(s.require(auth.PermDeviceRead)).Get("/", s.handleGetDevice)
					r.With(s.require(auth.PermDeviceRead)).Get("/logs", s.handleDeviceLogs)
					r.With(s.require(auth.PermDeviceOperate)).Post("/toggle", s.handleToggleDevice)
					r.With(s.require(auth.PermDeviceOperate)).Put("/state", s.handleSetDeviceState)
				})
			})

			r.With(s.require(auth.PermSimulationManage)).Post("/sensor", s.handleSensor)
			r.With(s.require(auth.PermSimulationRead)).Get("/sensor/readings", s.handleReadings)

			r.Route("/tasks", func(r chi.Router) {
				r.With(s.require(auth.PermSimulationRead)).Get("/", s.handleListTasks)
				r.With(s.require(auth.PermSimulationManage)).Post("/", s.handleCreateTask)
				r.With(s.require(auth.PermSimulationManage)).Delete("/", s.handleClearTasks)
			})

			r.With(s.require(auth.PermSimulationManage)).Post("/clock/tick", s.handleTick)
			r.With(s.require(auth.PermSimulationRead)).Get("/status", s.handleStatus)
			r.With(s.require(auth.PermSimulationRead)).Get("/logs", s.handleLogs)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}
