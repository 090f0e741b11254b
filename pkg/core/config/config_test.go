package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[inputs]
regions = "data/regions.csv"
core_lut = "data/{iso3}/core_lut.csv"
penetration = "data/{iso3}/penetration.csv"
smartphones = "data/{iso3}/smartphones.csv"
global = "params/global.yaml"
countries = "params/countries.yaml"

[run]
start_year = 2020
end_year = 2023
workers = 2

[[jobs]]
country = "MWI"
scenarios = ["low_10_10_10"]
strategies = ["4G_epc_wireless_baseline_baseline_baseline_baseline"]
confidence = [50]

[logging]
level = "debug"
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "engine.toml", sampleTOML)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, []int{2020, 2021, 2022, 2023}, cfg.Run.Years())
	assert.Equal(t, 2, cfg.Run.Workers)
	assert.Equal(t, "fcfs", cfg.Run.Policy)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "results", cfg.Output.CSVDir)
	require.Len(t, cfg.Jobs, 1)
	assert.Equal(t, "MWI", cfg.Jobs[0].Country)
	assert.Equal(t, "data/MWI/core_lut.csv", ForCountry(cfg.Inputs.CoreLUT, "MWI"))
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "engine.toml", sampleTOML+"\n[output]\npostgres = true\n")
	envFile := writeFile(t, dir, ".env", "DATABASE_URL=postgres://engine@localhost/subsidy\n")

	t.Setenv(EnvWorkers, "8")
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvDatabaseURL, "")
	os.Unsetenv(EnvDatabaseURL)

	cfg, err := Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Run.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "postgres://engine@localhost/subsidy", cfg.Output.DatabaseURL)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	path := writeFile(t, t.TempDir(), "engine.toml", sampleTOML)
	_, err := Load(path, filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"no jobs":         "[inputs]\nregions=\"r\"\ncore_lut=\"c\"\npenetration=\"p\"\nsmartphones=\"s\"\nglobal=\"g\"\ncountries=\"k\"\n[run]\nstart_year=2020\nend_year=2021\n",
		"reversed years":  strings.Replace(sampleTOML, "end_year = 2023", "end_year = 2019", 1),
		"zero workers":    sampleTOML,
		"bad policy":      sampleTOML,
		"postgres no url": sampleTOML + "\n[output]\npostgres = true\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(EnvDatabaseURL, "")
			t.Setenv(EnvWorkers, "")
			t.Setenv(EnvPolicy, "")
			switch name {
			case "zero workers":
				t.Setenv(EnvWorkers, "0")
			case "bad policy":
				t.Setenv(EnvPolicy, "lottery")
			}
			path := writeFile(t, t.TempDir(), "engine.toml", body)
			_, err := Load(path, "")
			assert.Error(t, err)
		})
	}
}
