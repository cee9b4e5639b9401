package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/paddock/pkg/batch/core/config"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := config.NewConfig()

	assert.Equal(t, "UTC", cfg.Paddock.System.Timezone)
	assert.Equal(t, "INFO", cfg.Paddock.System.Logging.Level)
	assert.Equal(t, []string{"Finished", "+1 Lap"}, cfg.Paddock.Pipeline.Features.AllowedStatuses)
	assert.Equal(t, config.PairOrderStored, cfg.Paddock.Pipeline.Features.PairOrder)
	assert.Contains(t, cfg.Paddock.Pipeline.Features.StreetCircuits, "Monaco")
	assert.Contains(t, cfg.Paddock.Pipeline.Features.SemiCircuits, "Qatar")
	assert.Equal(t, "raw_data", cfg.Paddock.Output.RawDataName)
	assert.Equal(t, "raw_cleaned", cfg.Paddock.Output.CleanedName)
	assert.Equal(t, "metadata", cfg.Paddock.Infrastructure.JobRepositoryDBRef)
	assert.Equal(t, []string{config.StepMigrate, config.StepSeason, config.StepFeatures}, cfg.Paddock.Batch.Steps)
}

func TestLoadConfig_YAMLOverDefaults(t *testing.T) {
	yaml := []byte(`
paddock:
  batch:
    steps: [telemetry, season, features]
  pipeline:
    seasons: [2023, 2024]
    telemetry:
      year: 2024
      event: Bahrain
    features:
      pair_order: driver
  output:
    base_dir: /tmp/out
`)
	cfg, err := config.LoadConfig("", yaml)
	require.NoError(t, err)

	assert.Equal(t, []string{"telemetry", "season", "features"}, cfg.Paddock.Batch.Steps)
	assert.Equal(t, []int{2023, 2024}, cfg.Paddock.Pipeline.Seasons)
	assert.Equal(t, config.PairOrderDriver, cfg.Paddock.Pipeline.Features.PairOrder)
	assert.Equal(t, "/tmp/out", cfg.Paddock.Output.BaseDir)
	assert.Equal(t, "R", cfg.Paddock.Pipeline.Telemetry.SessionType)
	// untouched defaults survive
	assert.Equal(t, "season_results.csv", cfg.Paddock.Output.SeasonFile)
	assert.Equal(t, []string{"Finished", "+1 Lap"}, cfg.Paddock.Pipeline.Features.AllowedStatuses)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PADDOCK_PIPELINE_SEASONS", "2022, 2025")
	t.Setenv("PADDOCK_SYSTEM_LOGGING_LEVEL", "DEBUG")
	t.Setenv("PADDOCK_PROVIDER_CACHE_ENABLED", "false")
	t.Setenv("PADDOCK_PIPELINE_FEATURES_ALLOWED_STATUSES", "Finished")

	cfg, err := config.LoadConfig("", []byte("paddock: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, []int{2022, 2025}, cfg.Paddock.Pipeline.Seasons)
	assert.Equal(t, "DEBUG", cfg.Paddock.System.Logging.Level)
	assert.False(t, cfg.Paddock.Provider.Cache.Enabled)
	assert.Equal(t, []string{"Finished"}, cfg.Paddock.Pipeline.Features.AllowedStatuses)
}

func TestLoadConfig_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("PROVIDER_URL", "https://timing.example.test/api")
	cfg, err := config.LoadConfig("", []byte("paddock:\n  provider:\n    base_url: ${PROVIDER_URL}\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://timing.example.test/api", cfg.Paddock.Provider.BaseURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := config.LoadConfig("", []byte("paddock:\n  pipeline:\n    features:\n      pair_order: random\n"))
	assert.Error(t, err)

	_, err = config.LoadConfig("", []byte("paddock: [not, a, map]\n"))
	assert.Error(t, err)

	t.Setenv("PADDOCK_PIPELINE_SEASONS", "twenty")
	_, err = config.LoadConfig("", []byte("paddock: {}\n"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidSteps(t *testing.T) {
	_, err := config.LoadConfig("", []byte("paddock:\n  batch:\n    steps: [season, podium]\n"))
	assert.ErrorContains(t, err, "podium")

	_, err = config.LoadConfig("", []byte("paddock:\n  batch:\n    steps: [telemetry]\n"))
	assert.ErrorContains(t, err, "pipeline.telemetry.year")

	_, err = config.LoadConfig("", []byte("paddock:\n  batch:\n    steps: []\n"))
	assert.Error(t, err)
}

func TestOsEnvironmentExpander_Defaults(t *testing.T) {
	t.Setenv("PADDOCK_TEST_SET", "value")
	out, err := config.NewOsEnvironmentExpander().Expand([]byte("a: ${PADDOCK_TEST_SET:-x}\nb: ${PADDOCK_TEST_UNSET:-fallback}\nc: ${PADDOCK_TEST_UNSET}\n"))
	require.NoError(t, err)
	assert.Equal(t, "a: value\nb: fallback\nc: \n", string(out))
}
