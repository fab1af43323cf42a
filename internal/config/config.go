// Package config builds the Virta configuration once at startup.
// Credentials come from the environment, everything else from an
// optional YAML file. The resulting struct is passed explicitly to
// each component - no ambient reads after startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yairfalse/virta/internal/errdefs"
)

// Batch modes for ingestion.
const (
	BatchAll   = "all"    // one ingest request for the whole run (default)
	BatchPerVM = "per-vm" // one ingest request per virtual machine
)

// Config is the root configuration structure.
type Config struct {
	Azure  AzureConfig  `yaml:"-"`
	Diode  DiodeConfig  `yaml:"-"`
	Ingest IngestConfig `yaml:"ingest"`
	OTEL   OTELConfig   `yaml:"otel"`
	Daemon DaemonConfig `yaml:"daemon"`
	Log    LogConfig    `yaml:"log"`
}

// AzureConfig holds service-principal credentials for one subscription.
// Held in memory for the process duration, never persisted.
type AzureConfig struct {
	TenantID       string `yaml:"-"`
	ClientID       string `yaml:"-"`
	ClientSecret   string `yaml:"-"`
	SubscriptionID string `yaml:"-"`
}

// DiodeConfig holds the ingestion target and OAuth2 client credentials.
// Only OAuth2 is supported by the ingestion SDK.
type DiodeConfig struct {
	Target       string `yaml:"-"` // grpc://host:port/path
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
}

// IngestConfig holds mapper and sink settings.
type IngestConfig struct {
	BatchMode string `yaml:"batch_mode"` // "all" or "per-vm"
}

// OTELConfig holds OpenTelemetry settings.
type OTELConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Insecure    bool          `yaml:"insecure"`
	ServiceName string        `yaml:"service_name"`
	Traces      TracesConfig  `yaml:"traces"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// TracesConfig holds tracing settings.
type TracesConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sample_rate"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DaemonConfig holds daemon-mode settings.
type DaemonConfig struct {
	IntervalStr string `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load builds the configuration from an optional YAML file path and
// the process environment. An empty path means defaults plus env only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyDefaults(cfg)
	applyEnv(cfg)

	if err := parseInterval(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Ingest.BatchMode == "" {
		cfg.Ingest.BatchMode = BatchAll
	}
	if cfg.OTEL.ServiceName == "" {
		cfg.OTEL.ServiceName = "virta"
	}
	if cfg.Daemon.IntervalStr == "" {
		cfg.Daemon.IntervalStr = "15m"
	}
	if cfg.Daemon.MetricsAddr == "" {
		cfg.Daemon.MetricsAddr = ":9090"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func applyEnv(cfg *Config) {
	cfg.Azure.TenantID = os.Getenv("AZURE_TENANT_ID")
	cfg.Azure.ClientID = os.Getenv("AZURE_CLIENT_ID")
	cfg.Azure.ClientSecret = os.Getenv("AZURE_CLIENT_SECRET")
	cfg.Azure.SubscriptionID = os.Getenv("AZURE_SUBSCRIPTION_ID")

	cfg.Diode.Target = os.Getenv("DIODE_TARGET")
	if cfg.Diode.Target == "" {
		cfg.Diode.Target = "grpc://localhost:8080/diode"
	}
	cfg.Diode.ClientID = os.Getenv("DIODE_CLIENT_ID")
	cfg.Diode.ClientSecret = os.Getenv("DIODE_CLIENT_SECRET")
}

func parseInterval(cfg *Config) error {
	d, err := time.ParseDuration(cfg.Daemon.IntervalStr)
	if err != nil {
		return fmt.Errorf("parse daemon interval %q: %w", cfg.Daemon.IntervalStr, err)
	}
	cfg.Daemon.Interval = d
	return nil
}

// Validate checks the full configuration, including the ingestion identity.
func (c *Config) Validate() error {
	if err := c.Azure.Validate(); err != nil {
		return err
	}
	if err := c.Diode.Validate(); err != nil {
		return err
	}
	if c.Ingest.BatchMode != BatchAll && c.Ingest.BatchMode != BatchPerVM {
		return fmt.Errorf("ingest: batch_mode must be %q or %q (got %q)",
			BatchAll, BatchPerVM, c.Ingest.BatchMode)
	}
	return nil
}

// Validate checks that the service-principal tuple is complete.
func (a *AzureConfig) Validate() error {
	missing := ""
	switch {
	case a.TenantID == "":
		missing = "AZURE_TENANT_ID"
	case a.ClientID == "":
		missing = "AZURE_CLIENT_ID"
	case a.ClientSecret == "":
		missing = "AZURE_CLIENT_SECRET"
	case a.SubscriptionID == "":
		missing = "AZURE_SUBSCRIPTION_ID"
	}
	if missing != "" {
		return fmt.Errorf("%w: %s is not set", errdefs.ErrAuthentication, missing)
	}
	return nil
}

// Validate checks that the OAuth2 client credentials are complete.
func (d *DiodeConfig) Validate() error {
	if d.Target == "" {
		return fmt.Errorf("%w: DIODE_TARGET is not set", errdefs.ErrAuthentication)
	}
	if d.ClientID == "" || d.ClientSecret == "" {
		return fmt.Errorf("%w: set DIODE_CLIENT_ID and DIODE_CLIENT_SECRET",
			errdefs.ErrAuthentication)
	}
	return nil
}
