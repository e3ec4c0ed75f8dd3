// Homesim - Smart Home Simulator
//
// This is the main entry point for the simulator. It seeds the configured
// devices and runs the interactive console on stdin. Optional integrations:
//   - SQLite activity log (database.enabled)
//   - MQTT state publishing and sensor feed (mqtt.enabled)
//   - InfluxDB metrics (influxdb.enabled)
//   - HTTP/WebSocket API (api.enabled)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/homesim/migrations"

	"github.com/nerrad567/homesim/internal/activity"
	"github.com/nerrad567/homesim/internal/api"
	"github.com/nerrad567/homesim/internal/climate"
	"github.com/nerrad567/homesim/internal/console"
	"github.com/nerrad567/homesim/internal/device"
	"github.com/nerrad567/homesim/internal/infrastructure/config"
	"github.com/nerrad567/homesim/internal/infrastructure/database"
	"github.com/nerrad567/homesim/internal/infrastructure/influxdb"
	"github.com/nerrad567/homesim/internal/infrastructure/logging"
	"github.com/nerrad567/homesim/internal/infrastructure/mqtt"
	"github.com/nerrad567/homesim/internal/schedule"
	"github.com/nerrad567/homesim/internal/sensor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the simulator and drives the console until in is exhausted,
// the user exits or ctx is cancelled.
func run(ctx context.Context, in io.Reader, out io.Writer) error {
	log := logging.Default()
	log.Info("starting homesim",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := loadConfig(getConfigPath())
	if err != nil {
		return err
	}

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	var defaultPolicy climate.Policy = climate.Eco{}
	if cfg.Simulation.DefaultPolicy != "" {
		defaultPolicy, err = climate.Parse(cfg.Simulation.DefaultPolicy)
		if err != nil {
			return fmt.Errorf("simulation.default_policy: %w", err)
		}
	}

	// Activity log, optionally persisted.
	var store activity.Store
	if cfg.Database.Enabled {
		db, openErr := openDatabase(ctx, cfg.Database)
		if openErr != nil {
			return openErr
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database ready", "path", db.Path())
		repo := activity.NewSQLiteRepository(db.DB)
		if err := pruneActivity(ctx, repo, cfg.Database.RetentionDays, log); err != nil {
			return err
		}
		store = repo
	} else {
		log.Info("database disabled, activity kept in memory")
	}

	recorder := activity.NewRecorder(activity.NewHistory(cfg.Simulation.HistoryLimit), store)
	recorder.SetLogger(log)

	hub := api.NewHub(cfg.WebSocket, log)
	listeners := []device.Listener{hub}
	subscribers := []sensor.Subscriber{hub}

	// MQTT publishing and sensor feed
	var readings <-chan int
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		qos := byte(cfg.MQTT.QoS) //nolint:gosec // validated to 0..2
		publisher := activity.NewPublisher(mqttClient, qos)
		publisher.SetLogger(log)
		listeners = append(listeners, publisher)

		feed := sensor.NewFeed(cfg.MQTT.SensorTopic)
		feed.SetLogger(log)
		if subErr := feed.Start(mqttClient, qos); subErr != nil {
			return fmt.Errorf("subscribing to sensor topic: %w", subErr)
		}
		readings = feed.Readings()
		log.Info("sensor feed started", "topic", feed.Topic())
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB metrics (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		metrics := activity.NewMetricsRecorder(influxClient)
		listeners = append(listeners, metrics)
		subscribers = append(subscribers, metrics)
	} else {
		log.Info("InfluxDB disabled")
	}

	registry := device.NewRegistry()
	registry.SetLogger(log)
	registry.SetDefaultPolicy(defaultPolicy)

	scheduler := schedule.New(registry)
	scheduler.SetLogger(log)

	broadcaster := sensor.NewBroadcaster()
	broadcaster.SetLogger(log)
	for _, s := range subscribers {
		broadcaster.Subscribe(s)
	}

	con := console.New(console.Deps{
		Registry:            registry,
		Scheduler:           scheduler,
		Broadcaster:         broadcaster,
		Recorder:            recorder,
		Listeners:           listeners,
		Out:                 out,
		Logger:              log,
		ApplyPolicyOnSensor: cfg.Simulation.ApplyPolicyOnSensor,
	})

	if err := seedDevices(con, cfg.Simulation.Devices); err != nil {
		return err
	}
	log.Info("devices seeded", "devices", registry.Len())

	// HTTP API (optional)
	if cfg.API.Enabled {
		srv, newErr := api.New(api.Deps{
			Config:     cfg.API,
			WS:         cfg.WebSocket,
			Security:   cfg.Security,
			Logger:     log,
			Controller: con,
			Hub:        hub,
			Version:    version,
		})
		if newErr != nil {
			return fmt.Errorf("creating API server: %w", newErr)
		}
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API disabled")
	}

	fmt.Fprintf(out, "Smart home simulator %s. Type \"help\" for commands.\n", version)
	if err := con.Run(ctx, in, readings); err != nil {
		return fmt.Errorf("console: %w", err)
	}

	log.Info("homesim stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOMESIM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMESIM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig loads the file at path. A missing default file falls back to
// built-in defaults; a missing file named by HOMESIM_CONFIG is an error.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.LoadDefaults()
		if err != nil {
			return nil, fmt.Errorf("loading default config: %w", err)
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("loading config: %w", err)
}

// openDatabase opens SQLite and applies migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(database.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// pruner removes stored history older than a given age.
type pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// pruneActivity applies the configured retention. Zero days keeps
// everything.
func pruneActivity(ctx context.Context, p pruner, days int, log *logging.Logger) error {
	if days <= 0 {
		return nil
	}
	removed, err := p.Prune(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("pruning activity: %w", err)
	}
	log.Info("activity pruned", "retention_days", days, "removed", removed)
	return nil
}

// seedDevices adds the configured devices in order.
func seedDevices(con *console.Console, seeds []config.DeviceSeed) error {
	for i, seed := range seeds {
		kind, err := device.ParseKind(seed.Type)
		if err != nil {
			return fmt.Errorf("simulation.devices[%d]: %w", i, err)
		}
		if _, err := con.AddDevice(kind, seed.Name); err != nil {
			return fmt.Errorf("simulation.devices[%d]: %w", i, err)
		}
	}
	return nil
}
