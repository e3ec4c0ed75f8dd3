// Package config handles loading and validating the simulator configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with HOMESIM_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Secrets (MQTT password, InfluxDB token, JWT secret, API key) should be
//     set via environment variables
//   - The JWT secret and API key are only required when the HTTP API is enabled
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if errors.Is(err, fs.ErrNotExist) {
//	    cfg, err = config.LoadDefaults()
//	}
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Site.Name)
package config
