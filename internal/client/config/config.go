package config

import "time"

// Config holds runtime settings for the sealbox CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend HTTP API.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - CachePath: path of the local bbolt file holding the offline copy of
//     the sealed vault and login data.
//
// Units: OnlineCheckInterval is a time.Duration (e.g., 3*time.Second).
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	CachePath           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.CachePath = "sealbox.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
