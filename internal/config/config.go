package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Sources   SourcesConfig   `yaml:"sources" envconfig:"SOURCES"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	MaxDatasets     int             `yaml:"max_datasets" envconfig:"MAX_DATASETS" validate:"min=1"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// SourcesConfig names the default Summary and Secondary files
type SourcesConfig struct {
	PrimaryPath    string `yaml:"primary_path" envconfig:"PRIMARY_PATH"`
	PrimarySheet   string `yaml:"primary_sheet" envconfig:"PRIMARY_SHEET"`
	SecondaryPath  string `yaml:"secondary_path" envconfig:"SECONDARY_PATH"`
	SecondarySheet string `yaml:"secondary_sheet" envconfig:"SECONDARY_SHEET"`
	CacheEntries   int    `yaml:"cache_entries" envconfig:"CACHE_ENTRIES" validate:"min=0"`
}

// PipelineConfig controls reconciliation
type PipelineConfig struct {
	// JoinKeys overrides key resolution; empty means User + Order Date,
	// or User alone when the secondary source has no Order Date.
	JoinKeys        []string `yaml:"join_keys" envconfig:"JOIN_KEYS" validate:"max=4,dive,required"`
	JoinMode        string   `yaml:"join_mode" envconfig:"JOIN_MODE" validate:"oneof=left outer"`
	DateColumns     []string `yaml:"date_columns" envconfig:"DATE_COLUMNS" validate:"dive,required"`
	PrimarySuffix   string   `yaml:"primary_suffix" envconfig:"PRIMARY_SUFFIX" validate:"required"`
	SecondarySuffix string   `yaml:"secondary_suffix" envconfig:"SECONDARY_SUFFIX" validate:"required,nefield=PrimarySuffix"`
	PreviewRows     int      `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"min=1"`
}

// ExportConfig controls CSV and XLSX output
type ExportConfig struct {
	BOM          bool   `yaml:"bom" envconfig:"BOM"`
	SheetName    string `yaml:"sheet_name" envconfig:"SHEET_NAME" validate:"required,max=31"`
	CSVFileName  string `yaml:"csv_file_name" envconfig:"CSV_FILE_NAME" validate:"required"`
	XLSXFileName string `yaml:"xlsx_file_name" envconfig:"XLSX_FILE_NAME" validate:"required"`
}

// TelemetryConfig controls OpenTelemetry setup
type TelemetryConfig struct {
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
}

// Load builds the configuration from Default, then the YAML file, then the
// environment. An empty configFile searches the default locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	// no default tags: unset variables leave file and Default values alone
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks every section against its validate tags
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the first existing default config file
func getConfigFilePath() string {
	for _, location := range ConfigFileLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			MaxDatasets:     DefaultMaxDatasets,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/ordersdash.log",
		},
		Sources: SourcesConfig{
			PrimaryPath:   DefaultPrimaryFile,
			SecondaryPath: DefaultSecondaryFile,
			CacheEntries:  DefaultCacheEntries,
		},
		Pipeline: PipelineConfig{
			JoinMode:        "left",
			DateColumns:     []string{"Order Date"},
			PrimarySuffix:   "_Sum",
			SecondarySuffix: "_Sec",
			PreviewRows:     DefaultPreviewRows,
		},
		Export: ExportConfig{
			BOM:          true,
			SheetName:    "Sheet1",
			CSVFileName:  DefaultCSVExportName,
			XLSXFileName: DefaultXLSXExportName,
		},
		Telemetry: TelemetryConfig{
			Environment:   "development",
			EnableTracing: false,
			TraceExporter: "none",
			SampleRatio:   1.0,
			EnableMetrics: true,
		},
	}
}
