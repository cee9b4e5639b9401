package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	config "github.com/tigerroll/paddock/pkg/batch/core/config"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	jobRunner "github.com/tigerroll/paddock/pkg/batch/core/job/runner"
	batchmetrics "github.com/tigerroll/paddock/pkg/batch/infrastructure/metrics"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/timeutil"
)

const testSchedule = `{"events":{"columns":["RoundNumber","Location","EventName","EventFormat","Session5Date"],
"rows":[[1,"Sakhir","Bahrain Grand Prix","conventional","2023-03-05 15:00:00"]]}}`

const testQuali = `{"drivers":["VER","PER"],
"results":{"columns":["Abbreviation","TeamName","Position"],
"rows":[["PER","Red Bull Racing",1],["VER","Red Bull Racing",2]]}}`

const testRace = `{"drivers":["VER","PER"],
"results":{"columns":["Abbreviation","TeamName","Position","GridPosition","ClassifiedPosition","Status","Time"],
"rows":[["VER","Red Bull Racing",1,2,"1","Finished",5636.736],["PER","Red Bull Racing",2,1,"2","Finished",5648.723]]}}`

const testTelemetry = `{"drivers":["1","11"],
"telemetry":{"1":{"columns":["SessionTime","Time","Speed","RPM","nGear"],"rows":[[1.0,1.0,280,11000,7],[3.0,3.0,-1,11000,7]]},
"11":{"columns":["SessionTime","Time","Speed","RPM","nGear"],"rows":[[2.0,2.0,275,10800,7]]}},
"weather":{"columns":["Time","AirTemp","Rainfall"],"rows":[[0,25.1,false]]}}`

// artifacts are the files a run persists, compared byte for byte across runs.
var artifacts = []string{"raw_data.parquet", "raw_cleaned.parquet", "season_results.csv", "teammate_pairs.csv"}

func readArtifacts(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	out := make(map[string][]byte, len(artifacts))
	for _, name := range artifacts {
		data, err := os.ReadFile(filepath.Join(dir, "data_output", name))
		require.NoError(t, err, name)
		out[name] = data
	}
	return out
}

func newProviderServer(t *testing.T) (*httptest.Server, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		switch r.URL.Path {
		case "/schedule/2023":
			_, _ = w.Write([]byte(testSchedule))
		case "/sessions/2023/1/Q":
			_, _ = w.Write([]byte(testQuali))
		case "/sessions/2023/1/R":
			_, _ = w.Write([]byte(testRace))
		case "/sessions/2024/Bahrain/R":
			_, _ = w.Write([]byte(testTelemetry))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig(dir, baseURL string) *config.Config {
	cfg := config.NewConfig()
	cfg.Paddock.Provider.BaseURL = baseURL
	cfg.Paddock.Pipeline.Seasons = []int{2023}
	cfg.Paddock.Output.MetricsTextfile = filepath.Join(dir, "metrics.prom")
	cfg.Paddock.AdapterConfigs = map[string]interface{}{
		"metadata": map[string]interface{}{"type": "sqlite", "database": filepath.Join(dir, "metadata.db")},
		"cache":    map[string]interface{}{"type": "sqlite", "database": filepath.Join(dir, "cache.db")},
	}
	cfg.Paddock.StorageConfigs = map[string]interface{}{
		"local": map[string]interface{}{"type": "local", "base_dir": dir},
	}
	return cfg
}

func TestApplication_RunsConfiguredJob(t *testing.T) {
	dir := t.TempDir()
	srv, calls := newProviderServer(t)
	cfg := testConfig(dir, srv.URL)
	cfg.Paddock.Batch.Steps = []string{config.StepMigrate, config.StepTelemetry, config.StepSeason, config.StepFeatures}
	cfg.Paddock.Pipeline.Telemetry.Year = 2024
	cfg.Paddock.Pipeline.Telemetry.Event = "Bahrain"

	var (
		job    port.Job
		runner *jobRunner.SimpleJobRunner
		prom   *batchmetrics.PrometheusRecorder
	)
	app := fxtest.New(t,
		Options(cfg, os.DirFS("../../cmd/paddock/resources/migrations")),
		fx.Decorate(func(timeutil.Clock) timeutil.Clock {
			return timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		}),
		fx.Populate(&job, &runner, &prom),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, "teammateFeaturesJob", job.JobName())
	ctx := t.Context()

	require.True(t, runJob(ctx, job, runner, prom, cfg.Paddock.Output.MetricsTextfile))
	assert.EqualValues(t, 4, atomic.LoadInt64(calls))
	first := readArtifacts(t, dir)

	pairs, err := os.ReadFile(filepath.Join(dir, "data_output", "teammate_pairs.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(pairs)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "2023,1,Sakhir,Red Bull Racing,VER,PER,1,1,0,0,-1,"), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], ",1"), lines[1])

	_, err = os.Stat(filepath.Join(dir, "data_output", "season_results.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(cfg.Paddock.Output.MetricsTextfile)
	assert.NoError(t, err)

	// Identical requests are served from the cache on the second run,
	// and the persisted artifacts come out byte for byte the same.
	execution, err := runner.Run(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, execution.ExitStatus)
	assert.EqualValues(t, 4, atomic.LoadInt64(calls))
	require.Len(t, execution.StepExecutions, 4)
	assert.Equal(t, 1, execution.StepExecutions[3].WriteCount)

	second := readArtifacts(t, dir)
	for _, name := range artifacts {
		assert.Equal(t, first[name], second[name], name)
	}
}

func TestApplication_FailedStepFailsJob(t *testing.T) {
	dir := t.TempDir()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	cfg := testConfig(dir, srv.URL)
	cfg.Paddock.Provider.Cache.Enabled = false
	cfg.Paddock.Infrastructure.JobRepositoryDBRef = ""
	cfg.Paddock.Batch.Steps = []string{config.StepSeason, config.StepFeatures}

	var (
		job    port.Job
		runner *jobRunner.SimpleJobRunner
	)
	app := fxtest.New(t,
		Options(cfg, os.DirFS("../../cmd/paddock/resources/migrations")),
		fx.Populate(&job, &runner),
	)
	app.RequireStart()
	defer app.RequireStop()

	execution, err := runner.Run(t.Context(), job)
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrNoUsableUnits)
	assert.Equal(t, model.ExitStatusFailed, execution.ExitStatus)
	assert.Len(t, execution.StepExecutions, 1)
}
