package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxConnections  = 100
	DefaultWriteTimeout    = 10 * time.Second
	DefaultReadLimit       = 1 << 20 // 1 MiB
	DefaultPingInterval    = 30 * time.Second
	DefaultFailureBackoff  = 10 * time.Second
	DefaultItemConcurrency = 4
	DefaultReportsDir      = "output/reports"
	DefaultOutputFormat    = "html"
)

func (c *DashboardConfig) applyDefaults() {
	// Server defaults
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Websocket defaults
	if c.Websocket.MaxConnections == 0 {
		c.Websocket.MaxConnections = DefaultMaxConnections
	}
	if c.Websocket.WriteTimeout == 0 {
		c.Websocket.WriteTimeout = DefaultWriteTimeout
	}
	if c.Websocket.ReadLimit == 0 {
		c.Websocket.ReadLimit = DefaultReadLimit
	}

	// Maintenance defaults
	if c.Maintenance.Interval == 0 {
		c.Maintenance.Interval = DefaultPingInterval
	}
	if c.Maintenance.FailureBackoff == 0 {
		c.Maintenance.FailureBackoff = DefaultFailureBackoff
	}

	// Batch defaults
	if c.Batch.ItemConcurrency == 0 {
		c.Batch.ItemConcurrency = DefaultItemConcurrency
	}

	// Reports defaults
	if c.Reports.Dir == "" {
		c.Reports.Dir = DefaultReportsDir
	}
	if c.Reports.OutputFormat == "" {
		c.Reports.OutputFormat = DefaultOutputFormat
	}
}
