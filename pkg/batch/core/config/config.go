// Package config holds paddock's configuration tree and its loader.
// Every pipeline stage receives the parts it needs explicitly; nothing in the
// pipeline packages reads configuration from globals.
package config

// EmbeddedConfig is the raw application.yaml compiled into the binary.
type EmbeddedConfig []byte

// LogLevel names a logging verbosity.
type LogLevel string

const (
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelSilent LogLevel = "SILENT"
)

// Pair orders accepted by FeaturesConfig.PairOrder.
const (
	PairOrderStored = "stored"
	PairOrderDriver = "driver"
)

// Step names accepted in BatchConfig.Steps.
const (
	StepMigrate   = "migrate"
	StepTelemetry = "telemetry"
	StepSeason    = "season"
	StepFeatures  = "features"
)

// BatchConfig selects the job and the steps it runs, in order.
type BatchConfig struct {
	JobName string   `yaml:"job_name"`
	Steps   []string `yaml:"steps"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SystemConfig holds process-wide settings.
type SystemConfig struct {
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// CacheConfig controls the provider response cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBRef   string `yaml:"db_ref"`
}

// RetryConfig controls how often a failed provider request is repeated.
type RetryConfig struct {
	// MaxAttempts includes the first attempt; 1 disables retries.
	MaxAttempts       int `yaml:"max_attempts"`
	InitialIntervalMS int `yaml:"initial_interval_ms"`
}

// ProviderConfig points at the timing data provider.
type ProviderConfig struct {
	BaseURL        string      `yaml:"base_url"`
	TimeoutSeconds int         `yaml:"timeout_seconds"`
	UserAgent      string      `yaml:"user_agent"`
	Retry          RetryConfig `yaml:"retry"`
	Cache          CacheConfig `yaml:"cache"`
}

// TelemetryConfig selects the single session whose telemetry is merged and cleaned.
type TelemetryConfig struct {
	Year        int    `yaml:"year"`
	Event       string `yaml:"event"`
	SessionType string `yaml:"session_type"`
	// AttachLaps enables the optional lap enrichment of cleaned telemetry.
	AttachLaps bool `yaml:"attach_laps"`
}

// FeaturesConfig parameterises feature derivation.
type FeaturesConfig struct {
	AllowedStatuses []string `yaml:"allowed_statuses"`
	// PairOrder is "stored" (first row in a team group is driver A) or "driver" (smaller driver code is A).
	PairOrder      string   `yaml:"pair_order"`
	StreetCircuits []string `yaml:"street_circuits"`
	SemiCircuits   []string `yaml:"semi_circuits"`
}

// PipelineConfig selects what the pipeline runs against.
type PipelineConfig struct {
	Seasons []int `yaml:"seasons"`
	// Rounds restricts the plan to these round numbers when non-empty.
	Rounds       []int           `yaml:"rounds"`
	EventFormats []string        `yaml:"event_formats"`
	Telemetry    TelemetryConfig `yaml:"telemetry"`
	Features     FeaturesConfig  `yaml:"features"`
}

// OutputConfig describes where artifacts are persisted.
type OutputConfig struct {
	StorageRef         string `yaml:"storage_ref"`
	BaseDir            string `yaml:"base_dir"`
	RawDataName        string `yaml:"raw_data_name"`
	CleanedName        string `yaml:"cleaned_name"`
	SeasonFile         string `yaml:"season_file"`
	PairsFile          string `yaml:"pairs_file"`
	ParquetCompression string `yaml:"parquet_compression"`
	MetricsTextfile    string `yaml:"metrics_textfile"`
}

// ExporterConfig configures one OpenTelemetry exporter.
type ExporterConfig struct {
	// Exporter is "none", "otlpgrpc" or "otlphttp".
	Exporter        string `yaml:"exporter"`
	Endpoint        string `yaml:"endpoint"`
	Insecure        bool   `yaml:"insecure"`
	IntervalSeconds int    `yaml:"interval_seconds"`
}

// ObservabilityConfig configures tracing and metrics export.
type ObservabilityConfig struct {
	ServiceName string         `yaml:"service_name"`
	Tracing     ExporterConfig `yaml:"tracing"`
	Metrics     ExporterConfig `yaml:"metrics"`
}

// InfrastructureConfig names the connections used by runtime components.
type InfrastructureConfig struct {
	// JobRepositoryDBRef names the metadata database. Empty keeps job metadata in memory.
	JobRepositoryDBRef string `yaml:"job_repository_db_ref"`
}

// PaddockConfig is everything under the "paddock" key.
type PaddockConfig struct {
	Batch          BatchConfig          `yaml:"batch"`
	System         SystemConfig         `yaml:"system"`
	Provider       ProviderConfig       `yaml:"provider"`
	Pipeline       PipelineConfig       `yaml:"pipeline"`
	Output         OutputConfig         `yaml:"output"`
	Observability  ObservabilityConfig  `yaml:"observability"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	// AdapterConfigs holds named database connections, decoded by the database adapter.
	AdapterConfigs map[string]interface{} `yaml:"database"`
	// StorageConfigs holds named storage connections, decoded by the storage adapter.
	StorageConfigs map[string]interface{} `yaml:"storage"`
}

// Config is the root of the configuration tree.
type Config struct {
	Paddock        PaddockConfig  `yaml:"paddock"`
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a Config populated with defaults.
// The circuit lists and allowed statuses reproduce the values the models were trained with.
func NewConfig() *Config {
	return &Config{
		Paddock: PaddockConfig{
			Batch: BatchConfig{
				JobName: "teammateFeaturesJob",
				Steps:   []string{StepMigrate, StepSeason, StepFeatures},
			},
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Provider: ProviderConfig{
				TimeoutSeconds: 30,
				UserAgent:      "paddock",
				Retry:          RetryConfig{MaxAttempts: 3, InitialIntervalMS: 500},
				Cache:          CacheConfig{Enabled: true, DBRef: "cache"},
			},
			Pipeline: PipelineConfig{
				EventFormats: []string{"conventional"},
				Telemetry: TelemetryConfig{
					SessionType: "R",
				},
				Features: FeaturesConfig{
					AllowedStatuses: []string{"Finished", "+1 Lap"},
					PairOrder:       PairOrderStored,
					StreetCircuits:  []string{"Monaco", "Baku", "Jeddah", "Singapore", "Las Vegas", "Miami"},
					SemiCircuits:    []string{"Australia", "Canada", "Saudi Arabia", "Qatar"},
				},
			},
			Output: OutputConfig{
				StorageRef:         "local",
				BaseDir:            "data_output",
				RawDataName:        "raw_data",
				CleanedName:        "raw_cleaned",
				SeasonFile:         "season_results.csv",
				PairsFile:          "teammate_pairs.csv",
				ParquetCompression: "SNAPPY",
			},
			Observability: ObservabilityConfig{
				ServiceName: "paddock",
				Tracing:     ExporterConfig{Exporter: "none"},
				Metrics:     ExporterConfig{Exporter: "none", IntervalSeconds: 15},
			},
			Infrastructure: InfrastructureConfig{
				JobRepositoryDBRef: "metadata",
			},
			AdapterConfigs: map[string]interface{}{},
			StorageConfigs: map[string]interface{}{},
		},
	}
}
