package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SPC"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	SPC       SPCConfig       `yaml:"spc" envconfig:"ANALYSIS"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Alerts    AlertsConfig    `yaml:"alerts" envconfig:"ALERTS"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" split_words:"true" validate:"oneof=json console auto"`
	Output string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	// FilePath overrides the dated run log in the reports directory.
	FilePath string `yaml:"file_path" split_words:"true"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" split_words:"true"`
	RawDir       string `yaml:"raw_dir" split_words:"true" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" split_words:"true" validate:"required"`
	ReportsDir   string `yaml:"reports_dir" split_words:"true" validate:"required"`
	ChartsDir    string `yaml:"charts_dir" split_words:"true" validate:"required"`
}

// SPCConfig controls the statistical analysis
type SPCConfig struct {
	FYStartMonth int `yaml:"fy_start_month" split_words:"true" validate:"min=1,max=12"`
	// CurrentFY pins the fiscal year to analyse; 0 infers it from the latest event.
	CurrentFY          int  `yaml:"current_fy" split_words:"true" validate:"min=0"`
	FillFullFiscalYear bool `yaml:"fill_full_fiscal_year" split_words:"true"`
}

// Month returns the fiscal year start month.
func (c SPCConfig) Month() time.Month {
	return time.Month(c.FYStartMonth)
}

// CurrentFYOverride returns the configured fiscal year, or nil to infer it.
func (c SPCConfig) CurrentFYOverride() *int {
	if c.CurrentFY == 0 {
		return nil
	}
	fy := c.CurrentFY
	return &fy
}

// Source kinds
const (
	SourceAuto      = "auto"
	SourceSQL       = "sql"
	SourceAPI       = "api"
	SourceFile      = "file"
	SourceSynthetic = "synthetic"
)

// SourceConfig selects and configures the event extractor
type SourceConfig struct {
	Kind string `yaml:"kind" split_words:"true" validate:"oneof=auto sql api file synthetic"`
	// Fallback switches to the synthetic dataset when the configured source fails.
	Fallback  bool            `yaml:"fallback" split_words:"true"`
	SQL       SQLConfig       `yaml:"sql" envconfig:"SQL"`
	API       APIConfig       `yaml:"api" envconfig:"API"`
	File      FileConfig      `yaml:"file" envconfig:"FILE"`
	Synthetic SyntheticConfig `yaml:"synthetic" envconfig:"SYNTHETIC"`
}

// SQLConfig contains SQL Server connection settings
type SQLConfig struct {
	Server   string        `yaml:"server" split_words:"true"`
	Database string        `yaml:"database" split_words:"true"`
	User     string        `yaml:"user" split_words:"true"`
	Password string        `yaml:"password" split_words:"true"`
	Query    string        `yaml:"query" split_words:"true"`
	Timeout  time.Duration `yaml:"timeout" split_words:"true" validate:"min=0"`
}

// Configured reports whether every connection setting is present.
func (c SQLConfig) Configured() bool {
	return c.Server != "" && c.Database != "" && c.User != "" && c.Password != ""
}

// APIConfig contains REST extractor settings
type APIConfig struct {
	BaseURL  string        `yaml:"base_url" split_words:"true" validate:"omitempty,url"`
	Endpoint string        `yaml:"endpoint" split_words:"true"`
	Token    string        `yaml:"token" split_words:"true"`
	Timeout  time.Duration `yaml:"timeout" split_words:"true" validate:"min=0"`
	// RPS limits outgoing requests per second; 0 disables limiting.
	RPS float64 `yaml:"rps" split_words:"true" validate:"min=0"`
}

// FileConfig points at a CSV or XLSX export
type FileConfig struct {
	Path  string `yaml:"path" split_words:"true"`
	Sheet string `yaml:"sheet" split_words:"true"`
}

// SyntheticConfig sets the range of the generated demo dataset
type SyntheticConfig struct {
	From string `yaml:"from" split_words:"true" validate:"omitempty,datetime=2006-01-02"`
	To   string `yaml:"to" split_words:"true" validate:"omitempty,datetime=2006-01-02"`
}

// AlertsConfig configures breach notifications
type AlertsConfig struct {
	IncludeWarnings bool          `yaml:"include_warnings" split_words:"true"`
	Kafka           KafkaConfig   `yaml:"kafka" envconfig:"KAFKA"`
	Webhook         WebhookConfig `yaml:"webhook" envconfig:"WEBHOOK"`
}

// KafkaConfig contains the alert topic settings
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" split_words:"true"`
	Topic   string   `yaml:"topic" split_words:"true"`
}

// Enabled reports whether Kafka alerts are configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

// WebhookConfig contains the alert webhook settings
type WebhookConfig struct {
	URL     string        `yaml:"url" split_words:"true" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" split_words:"true" validate:"min=0"`
}

// Enabled reports whether webhook alerts are configured.
func (c WebhookConfig) Enabled() bool {
	return c.URL != ""
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" split_words:"true" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" validate:"gt=0"`
	// RunOnStart executes one pipeline run before serving.
	RunOnStart bool `yaml:"run_on_start" split_words:"true"`
	// RunRateLimit bounds POST /runs per second; 0 disables the limiter.
	RunRateLimit   float64  `yaml:"run_rate_limit" split_words:"true" validate:"min=0"`
	RunRateBurst   int      `yaml:"run_rate_burst" split_words:"true" validate:"min=0"`
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true"`
}

// TelemetryConfig contains OpenTelemetry settings
type TelemetryConfig struct {
	// TraceExporter is "file", "stdout" or "none".
	TraceExporter string  `yaml:"trace_exporter" split_words:"true" validate:"oneof=file stdout none"`
	EnableMetrics bool    `yaml:"enable_metrics" split_words:"true"`
	SampleRatio   float64 `yaml:"sample_ratio" split_words:"true" validate:"min=0,max=1"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence. An empty file
// path looks for config.yaml in the usual locations.
func Load(file string) (*Config, error) {
	cfg := Default()

	if file == "" {
		file = getConfigFilePath()
	}
	if file != "" {
		if err := loadFromFile(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override the values above. Leaf fields use
	// split_words rather than envconfig tags so that unprefixed variables such
	// as PATH or USER are never picked up.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile decodes a YAML file on top of cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its validation tags
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(c); err != nil {
		var msgs []string
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	if c.Source.Kind == SourceFile && c.Source.File.Path == "" {
		return fmt.Errorf("source.file.path is required when source.kind is %q", SourceFile)
	}
	if c.Source.Kind == SourceAPI && c.Source.API.BaseURL == "" {
		return fmt.Errorf("source.api.base_url is required when source.kind is %q", SourceAPI)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
			Output: "both",
		},
		Paths: PathsConfig{
			BaseDir:      ".",
			RawDir:       "data/raw",
			ProcessedDir: "data/processed",
			ReportsDir:   "outputs/reports",
			ChartsDir:    "outputs/charts",
		},
		SPC: SPCConfig{
			FYStartMonth: int(time.April),
		},
		Source: SourceConfig{
			Kind:     SourceAuto,
			Fallback: true,
			SQL: SQLConfig{
				Query:   DefaultEventsQuery,
				Timeout: 60 * time.Second,
			},
			API: APIConfig{
				Endpoint: "infection-events",
				Timeout:  30 * time.Second,
			},
		},
		Alerts: AlertsConfig{
			IncludeWarnings: true,
			Webhook: WebhookConfig{
				Timeout: 10 * time.Second,
			},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RunRateLimit:    0.2,
			RunRateBurst:    1,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "file",
			EnableMetrics: true,
			SampleRatio:   1.0,
		},
	}
}

// DefaultEventsQuery selects dated infection events from SQL Server.
const DefaultEventsQuery = "SELECT EventID, CollectionDate FROM dbo.InfectionEvents WHERE CollectionDate IS NOT NULL"
