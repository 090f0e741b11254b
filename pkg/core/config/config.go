// Package config loads the engine run configuration.
//
// Priority: defaults -> TOML file -> .env file -> environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"telecom_subsidy/pkg/core/logging"
	"telecom_subsidy/pkg/core/observability"
)

// Environment variables that override the file.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvWorkers     = "ENGINE_WORKERS"
	EnvLogLevel    = "ENGINE_LOG_LEVEL"
	EnvPolicy      = "ENGINE_SUBSIDY_POLICY"
)

// CountryPlaceholder is replaced by the ISO3 code in per-country paths.
const CountryPlaceholder = "{iso3}"

// Config is the run configuration.
type Config struct {
	Inputs  InputsConfig                `toml:"inputs"`
	Run     RunConfig                   `toml:"run"`
	Jobs    []JobConfig                 `toml:"jobs" validate:"min=1,dive"`
	Output  OutputConfig                `toml:"output"`
	Metrics MetricsConfig               `toml:"metrics"`
	Logging logging.Config              `toml:"logging"`
	Tracing observability.TracingConfig `toml:"tracing"`
}

// InputsConfig names the input tables. CoreLUT, Penetration and Smartphones
// may contain {iso3}.
type InputsConfig struct {
	Regions     string `toml:"regions" validate:"required"`
	CoreLUT     string `toml:"core_lut" validate:"required"`
	Penetration string `toml:"penetration" validate:"required"`
	Smartphones string `toml:"smartphones" validate:"required"`
	Global      string `toml:"global" validate:"required"`
	Countries   string `toml:"countries" validate:"required"`
}

// RunConfig controls the assessment period and batch execution.
type RunConfig struct {
	StartYear int    `toml:"start_year" validate:"required"`
	EndYear   int    `toml:"end_year" validate:"required,gtefield=StartYear"`
	Workers   int    `toml:"workers" validate:"gte=1"`
	Policy    string `toml:"subsidy_policy" validate:"omitempty,oneof=fcfs proportional"`
	Audit     bool   `toml:"audit_density"` // warn on population_km2 mismatches
}

// JobConfig expands into country x scenario x strategy x confidence tuples.
type JobConfig struct {
	Country    string   `toml:"country" validate:"required"`
	Scenarios  []string `toml:"scenarios" validate:"min=1"`
	Strategies []string `toml:"strategies" validate:"min=1"`
	Confidence []int    `toml:"confidence"`
}

// OutputConfig selects the result sinks.
type OutputConfig struct {
	CSVDir      string `toml:"csv_dir"`
	Report      string `toml:"report"` // markdown summary path; .html renders HTML
	Postgres    bool   `toml:"postgres"`
	DatabaseURL string `toml:"-"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Listen string `toml:"listen"` // e.g. ":9464"; empty disables
}

// NewDefaultConfig returns the defaults applied before the file is read.
func NewDefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			Workers: 4,
			Policy:  "fcfs",
		},
		Output: OutputConfig{
			CSVDir: "results",
		},
		Logging: logging.Config{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Tracing: observability.TracingConfig{
			ServiceName: "subsidy-engine",
			Exporter:    "stdout",
			SampleRatio: 1,
		},
	}
}

var validate = validator.New()

// Load reads the TOML file at path, then the optional env file, then the
// process environment, and validates the result.
func Load(path, envFile string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		cfg.Output.DatabaseURL = url
	}
	if workers := os.Getenv(EnvWorkers); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			cfg.Run.Workers = n
		}
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if policy := os.Getenv(EnvPolicy); policy != "" {
		cfg.Run.Policy = strings.ToLower(policy)
	}
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Output.Postgres && c.Output.DatabaseURL == "" {
		return fmt.Errorf("invalid config: postgres output requires %s", EnvDatabaseURL)
	}
	return nil
}

// Years is the inclusive assessment period.
func (r RunConfig) Years() []int {
	years := make([]int, 0, r.EndYear-r.StartYear+1)
	for y := r.StartYear; y <= r.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// ForCountry expands a per-country path template.
func ForCountry(template, iso3 string) string {
	return strings.ReplaceAll(template, CountryPlaceholder, iso3)
}
