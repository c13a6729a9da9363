package config

import "time"

// Config holds runtime settings for the rollcall CLI.
//
// Fields:
//   - AuthorityAddr: base URL of the authority HTTP API.
//   - DatabaseDSN: path of the local SQLite database file.
//   - SyncInterval: cadence of the periodic background sync.
//   - OnlineCheckInterval: how often the client probes authority reachability.
type Config struct {
	AuthorityAddr       string
	DatabaseDSN         string
	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.AuthorityAddr = "http://127.0.0.1:8080"
	c.DatabaseDSN = "rollcall.db"
	c.SyncInterval = 5 * time.Minute
	c.OnlineCheckInterval = 3 * time.Second
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
