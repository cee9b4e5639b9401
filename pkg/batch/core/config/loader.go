package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

const moduleName = "config"

// Overrides are rooted at the top-level "paddock" key, so no extra prefix is needed.
const envPrefix = ""

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"`
}

// loadConfig layers configuration sources, lowest precedence first:
//  1. defaults from NewConfig
//  2. the embedded YAML, after ${VAR} expansion
//  3. the .env file (only fills variables not already set)
//  4. environment variables named after the yaml path (PADDOCK_OUTPUT_BASE_DIR, ...)
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Debugf(".env file (%s) not loaded: %v", envFilePath, err)
		}
	}

	cfg := NewConfig()

	expanded, err := NewOsEnvironmentExpander().Expand(embeddedConfig)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to expand embedded config", err, false, false)
	}
	// Unmarshalling over the defaults keeps every key the YAML does not mention.
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to unmarshal embedded config", err, false, false)
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), envPrefix); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load config from environment variables", err, false, false)
	}
	cfg.EmbeddedConfig = embeddedConfig

	if err := validate(cfg); err != nil {
		return nil, exception.NewBatchError(moduleName, "invalid configuration", err, false, false)
	}
	return cfg, nil
}

// LoadConfig loads the configuration once at startup. See loadConfig for precedence.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig)
}

// NewConfigProvider is the Fx constructor for *Config. It also applies the configured log level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}
	logger.SetLogLevel(cfg.Paddock.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Paddock.System.Logging.Level)
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Paddock.Pipeline.Features.PairOrder {
	case PairOrderStored, PairOrderDriver:
	default:
		return fmt.Errorf("pipeline.features.pair_order must be %q or %q, got %q",
			PairOrderStored, PairOrderDriver, cfg.Paddock.Pipeline.Features.PairOrder)
	}
	if len(cfg.Paddock.Batch.Steps) == 0 {
		return fmt.Errorf("batch.steps must name at least one step")
	}
	for _, step := range cfg.Paddock.Batch.Steps {
		switch step {
		case StepMigrate, StepSeason, StepFeatures:
		case StepTelemetry:
			t := cfg.Paddock.Pipeline.Telemetry
			if t.Year == 0 || t.Event == "" {
				return fmt.Errorf("step %q needs pipeline.telemetry.year and pipeline.telemetry.event", step)
			}
		default:
			return fmt.Errorf("batch.steps contains unknown step %q", step)
		}
	}
	for _, year := range cfg.Paddock.Pipeline.Seasons {
		if year < 1950 {
			return fmt.Errorf("pipeline.seasons contains implausible year %d", year)
		}
	}
	return nil
}

// loadStructFromEnv walks val and overrides fields from environment variables
// whose names are the upper-cased, underscore-joined yaml path.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField assigns a string value to a scalar field, or a comma-separated list to a slice field.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		parts := splitList(value)
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := setField(slice.Index(i), part); err != nil {
				return err
			}
		}
		field.Set(slice)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
