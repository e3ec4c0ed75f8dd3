package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the home simulator.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Database   DatabaseConfig   `yaml:"database"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	API        APIConfig        `yaml:"api"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
	Security   SecurityConfig   `yaml:"security"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite settings for the activity log.
// Path may be ":memory:" for a session-only log.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays prunes older activity and readings at startup.
	// Zero keeps everything.
	RetentionDays int `yaml:"retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
	SensorTopic string              `yaml:"sensor_topic"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains API authentication settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`

	// APIKey is exchanged for an access token at POST /api/v1/auth/token.
	APIKey string `yaml:"api_key"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// SimulationConfig describes the simulated home.
type SimulationConfig struct {
	// Devices are created at startup, in order.
	Devices []DeviceSeed `yaml:"devices"`

	// DefaultPolicy is given to new thermostats: "eco" or "comfort".
	DefaultPolicy string `yaml:"default_policy"`

	// ApplyPolicyOnSensor re-applies every thermostat's policy after a
	// sensor broadcast. Off by default: a reading only selects the policy.
	ApplyPolicyOnSensor bool `yaml:"apply_policy_on_sensor"`

	// HistoryLimit bounds the in-memory activity history.
	HistoryLimit int `yaml:"history_limit"`
}

// DeviceSeed is a device created at startup.
type DeviceSeed struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HOMESIM_SECTION_KEY
// For example: HOMESIM_DATABASE_PATH, HOMESIM_MQTT_HOST
//
// The file read error is wrapped, so callers can test for fs.ErrNotExist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// LoadDefaults returns the default configuration with environment overrides
// applied. It is used when no config file is present.
func LoadDefaults() (*Config, error) {
	return finish(Default())
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config with sensible defaults: the three-device home,
// Eco for new thermostats and every external integration disabled.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "home-001",
			Name: "Simulated Home",
		},
		Database: DatabaseConfig{
			Path:        "./data/homesim.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "homesim",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
			SensorTopic: "homesim/sensor/+",
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "homesim",
			Bucket:        "homesim",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 15,
			},
		},
		Simulation: SimulationConfig{
			Devices: []DeviceSeed{
				{Type: "Light", Name: "LivingRoom Light"},
				{Type: "Fan", Name: "Bedroom Fan"},
				{Type: "Thermostat", Name: "Hallway Thermostat"},
			},
			DefaultPolicy: "eco",
			HistoryLimit:  500,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HOMESIM_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v, ok := envBool("HOMESIM_DATABASE_ENABLED"); ok {
		cfg.Database.Enabled = v
	}
	if v := os.Getenv("HOMESIM_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v, ok := envBool("HOMESIM_MQTT_ENABLED"); ok {
		cfg.MQTT.Enabled = v
	}
	if v := os.Getenv("HOMESIM_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOMESIM_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOMESIM_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v, ok := envBool("HOMESIM_API_ENABLED"); ok {
		cfg.API.Enabled = v
	}
	if v := os.Getenv("HOMESIM_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("HOMESIM_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v, ok := envBool("HOMESIM_INFLUXDB_ENABLED"); ok {
		cfg.InfluxDB.Enabled = v
	}
	if v := os.Getenv("HOMESIM_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("HOMESIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Security
	if v := os.Getenv("HOMESIM_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	if v := os.Getenv("HOMESIM_API_KEY"); v != "" {
		cfg.Security.APIKey = v
	}
}

// envBool reads a boolean environment variable. The second result is false
// when the variable is unset or not a valid boolean.
func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// minJWTSecretLength is the shortest accepted signing secret.
const minJWTSecretLength = 32

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Database validation
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the database is enabled")
	}
	if c.Database.RetentionDays < 0 {
		errs = append(errs, "database.retention_days must not be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.SensorTopic == "" {
		errs = append(errs, "mqtt.sensor_topic is required when MQTT is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when InfluxDB is enabled")
	}

	// API validation. Authentication is only required when the API is served.
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.Enabled {
		if c.Security.JWT.Secret == "" {
			errs = append(errs, "security.jwt.secret is required when the API is enabled (set HOMESIM_JWT_SECRET)")
		} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
			errs = append(errs, "security.jwt.secret must be at least 32 characters")
		}
		if c.Security.APIKey == "" {
			errs = append(errs, "security.api_key is required when the API is enabled (set HOMESIM_API_KEY)")
		}
	}

	// Simulation validation
	switch strings.ToLower(c.Simulation.DefaultPolicy) {
	case "", "eco", "comfort":
	default:
		errs = append(errs, fmt.Sprintf("simulation.default_policy %q must be eco or comfort", c.Simulation.DefaultPolicy))
	}
	if c.Simulation.HistoryLimit < 0 {
		errs = append(errs, "simulation.history_limit must not be negative")
	}
	for i, d := range c.Simulation.Devices {
		if strings.TrimSpace(d.Name) == "" {
			errs = append(errs, fmt.Sprintf("simulation.devices[%d].name is required", i))
		}
		if d.Type == "" {
			errs = append(errs, fmt.Sprintf("simulation.devices[%d].type is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
