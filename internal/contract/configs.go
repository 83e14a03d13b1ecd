package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/bizcache/schema"
)

// Default values for configuration.
const (
	DefaultTimeout = 15 * time.Second
	DefaultAPIPath = "/api"
)

// DefaultWorkers caps concurrent startup loads. Zero leaves them uncapped.
const DefaultWorkers = 0

// Config holds the runtime configuration shared by every entity cache.
// This struct remains the "final, validated" config.
type Config struct {
	Mode     schema.Mode
	BaseURL  string // Service root; resources live under BaseURL + /api/{resource}
	APIToken string // Please use env var as this is plaintext
	Timeout  time.Duration
	Workers  int

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Mode           string `mapstructure:"mode"`
	BaseURL        string `mapstructure:"base-url"`
	APIToken       string `mapstructure:"api-token"`
	Timeout        string `mapstructure:"timeout"`
	Workers        int    `mapstructure:"workers"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateModeConfigs(cfg, input); err != nil {
		return err
	}
	return validateStoreConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ResourceURL joins the service root, the API prefix and a resource path.
func ResourceURL(baseURL, resource string, id ...string) string {
	parts := []string{strings.TrimRight(baseURL, "/") + DefaultAPIPath, url.PathEscape(resource)}
	for _, p := range id {
		parts = append(parts, url.PathEscape(p))
	}
	return strings.Join(parts, "/")
}

// validateSimpleInputs processes and validates output, workers and timing fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers < 0 {
		return fmt.Errorf("workers must not be negative (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", input.Timeout)
		}
		cfg.Timeout = timeout
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// validateModeConfigs validates the cache mode and the remote service settings.
func validateModeConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.Mode = schema.Mode(strings.ToLower(input.Mode))
	if _, ok := schema.ValidModes[cfg.Mode]; !ok {
		return fmt.Errorf("invalid mode '%s'. must be remote, offline", input.Mode)
	}

	cfg.BaseURL = strings.TrimSpace(input.BaseURL)
	cfg.APIToken = input.APIToken
	if cfg.Mode != schema.RemoteMode {
		return nil
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("base-url is required when using %s mode", cfg.Mode)
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base-url '%s': %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base-url must use http or https (received %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base-url must include a host")
	}
	return nil
}

// validateStoreConfigs validates the offline store backend configuration.
func validateStoreConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}
