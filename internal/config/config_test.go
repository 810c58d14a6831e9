package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
server:
  host: 127.0.0.1
  port: 9000
websocket:
  max_connections: 25
reports:
  dir: /var/lib/reports
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Websocket.MaxConnections != 25 {
		t.Errorf("Websocket.MaxConnections = %d, want 25", cfg.Websocket.MaxConnections)
	}
	if cfg.Reports.Dir != "/var/lib/reports" {
		t.Errorf("Reports.Dir = %q, want %q", cfg.Reports.Dir, "/var/lib/reports")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_REPORTS_DIR", "/srv/reports")

	yaml := `
reports:
  dir: ${TEST_REPORTS_DIR}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Reports.Dir != "/srv/reports" {
		t.Errorf("Reports.Dir = %q, want %q", cfg.Reports.Dir, "/srv/reports")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
server:
  host: 127.0.0.1
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Websocket.MaxConnections != DefaultMaxConnections {
		t.Errorf("Websocket.MaxConnections = %d, want default %d", cfg.Websocket.MaxConnections, DefaultMaxConnections)
	}
	if cfg.Maintenance.Interval != DefaultPingInterval {
		t.Errorf("Maintenance.Interval = %v, want default %v", cfg.Maintenance.Interval, DefaultPingInterval)
	}
	if cfg.Batch.ItemConcurrency != DefaultItemConcurrency {
		t.Errorf("Batch.ItemConcurrency = %d, want default %d", cfg.Batch.ItemConcurrency, DefaultItemConcurrency)
	}
	if cfg.Reports.OutputFormat != DefaultOutputFormat {
		t.Errorf("Reports.OutputFormat = %q, want default %q", cfg.Reports.OutputFormat, DefaultOutputFormat)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() DashboardConfig {
		return DashboardConfig{
			Server: ServerConfig{Host: "0.0.0.0", Port: 8080, ShutdownTimeout: 10 * time.Second},
			Websocket: WebsocketConfig{
				MaxConnections: 100,
				WriteTimeout:   10 * time.Second,
				ReadLimit:      1 << 20,
			},
			Maintenance: MaintenanceConfig{Interval: 30 * time.Second, FailureBackoff: 10 * time.Second},
			Batch:       BatchConfig{ItemConcurrency: 4},
			Reports:     ReportsConfig{Dir: "output/reports", OutputFormat: "html"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*DashboardConfig)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *DashboardConfig) {},
			wantErr: "",
		},
		{
			name:    "bad port",
			mutate:  func(c *DashboardConfig) { c.Server.Port = 70000 },
			wantErr: "server.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "zero max connections",
			mutate:  func(c *DashboardConfig) { c.Websocket.MaxConnections = 0 },
			wantErr: "websocket.max_connections must be >= 1",
		},
		{
			name:    "zero maintenance interval",
			mutate:  func(c *DashboardConfig) { c.Maintenance.Interval = 0 },
			wantErr: "maintenance.interval must be > 0",
		},
		{
			name:    "zero item concurrency",
			mutate:  func(c *DashboardConfig) { c.Batch.ItemConcurrency = 0 },
			wantErr: "batch.item_concurrency must be >= 1",
		},
		{
			name:    "missing reports dir",
			mutate:  func(c *DashboardConfig) { c.Reports.Dir = "" },
			wantErr: "reports.dir is required",
		},
		{
			name:    "bad output format",
			mutate:  func(c *DashboardConfig) { c.Reports.OutputFormat = "docx" },
			wantErr: `reports.output_format must be html or pdf, got "docx"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
