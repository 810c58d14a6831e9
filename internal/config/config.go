package config

import "time"

// DashboardConfig is the root configuration for a dashboard realtime
// instance.
type DashboardConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Websocket   WebsocketConfig   `yaml:"websocket"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Batch       BatchConfig       `yaml:"batch"`
	Reports     ReportsConfig     `yaml:"reports"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WebsocketConfig holds connection registry and socket settings.
type WebsocketConfig struct {
	MaxConnections int           `yaml:"max_connections"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ReadLimit      int64         `yaml:"read_limit"` // Max inbound frame size in bytes
}

// MaintenanceConfig holds the background keepalive loop settings.
type MaintenanceConfig struct {
	Interval       time.Duration `yaml:"interval"`
	FailureBackoff time.Duration `yaml:"failure_backoff"`
}

// BatchConfig holds batch job supervisor settings.
type BatchConfig struct {
	ItemConcurrency int `yaml:"item_concurrency"`
}

// ReportsConfig holds report renderer settings.
type ReportsConfig struct {
	Dir          string `yaml:"dir"`
	OutputFormat string `yaml:"output_format"` // "html" or "pdf"
}
