package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/homesim/internal/activity"
	"github.com/nerrad567/homesim/internal/console"
	"github.com/nerrad567/homesim/internal/infrastructure/config"
	"github.com/nerrad567/homesim/internal/infrastructure/logging"
	"github.com/nerrad567/homesim/internal/schedule"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Controller runs simulator operations. *console.Console implements it.
type Controller interface {
	Devices(ctx context.Context) ([]console.DeviceView, error)
	Device(ctx context.Context, name string) (console.DeviceView, error)
	Toggle(ctx context.Context, name string) (console.DeviceView, error)
	SetState(ctx context.Context, name string, on bool) (console.DeviceView, bool, error)
	CreateDevice(ctx context.Context, typeName, name string) (console.DeviceView, error)
	Sensor(ctx context.Context, value int) error
	Schedule(ctx context.Context, name string, on bool, keyword string, seconds int) (string, error)
	Tasks(ctx context.Context) ([]schedule.TaskInfo, error)
	ClearTasks(ctx context.Context) (int, error)
	Tick(ctx context.Context, n int) (console.TickView, error)
	Status(ctx context.Context) (console.StatusView, error)
	Logs(ctx context.Context, n int) ([]activity.Entry, error)
	DeviceLogs(ctx context.Context, name string, n int) ([]activity.Entry, error)
	Readings(ctx context.Context, n int) ([]activity.Reading, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Security   config.SecurityConfig
	Logger     *logging.Logger
	Controller Controller

	// Hub must be the same hub attached to the devices so clients see
	// their events. If nil the server creates one that never broadcasts.
	Hub *Hub

	Version string
}

// Server is the HTTP API server.
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	secCfg     config.SecurityConfig
	logger     *logging.Logger
	controller Controller
	hub        *Hub
	tickets    *ticketStore
	version    string
	server     *http.Server
	cancel     context.CancelFunc
}

// New creates a new API server. It is not started until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}

	hub := deps.Hub
	if hub == nil {
		hub = NewHub(deps.WS, deps.Logger)
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		secCfg:     deps.Security,
		logger:     deps.Logger,
		controller: deps.Controller,
		hub:        hub,
		tickets:    newTicketStore(),
		version:    deps.Version,
	}, nil
}

// Handler returns the router. Start uses it; tests can serve it directly.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start runs the hub and ticket cleanup and begins listening in a
// background goroutine. The server can be stopped with Close.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)
	go s.cleanTicketsLoop(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
