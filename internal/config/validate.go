package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *DashboardConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must be >= 0")
	}

	if c.Websocket.MaxConnections < 1 {
		return errors.New("websocket.max_connections must be >= 1")
	}
	if c.Websocket.WriteTimeout < 0 {
		return errors.New("websocket.write_timeout must be >= 0")
	}
	if c.Websocket.ReadLimit < 1 {
		return errors.New("websocket.read_limit must be >= 1")
	}

	if c.Maintenance.Interval <= 0 {
		return errors.New("maintenance.interval must be > 0")
	}
	if c.Maintenance.FailureBackoff <= 0 {
		return errors.New("maintenance.failure_backoff must be > 0")
	}

	if c.Batch.ItemConcurrency < 1 {
		return errors.New("batch.item_concurrency must be >= 1")
	}

	if c.Reports.Dir == "" {
		return errors.New("reports.dir is required")
	}
	switch c.Reports.OutputFormat {
	case "html", "pdf":
	default:
		return fmt.Errorf("reports.output_format must be html or pdf, got %q", c.Reports.OutputFormat)
	}

	return nil
}
