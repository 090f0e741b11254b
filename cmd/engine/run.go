package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"telecom_subsidy/pkg/core/config"
	"telecom_subsidy/pkg/core/logging"
	"telecom_subsidy/pkg/core/observability"
	"telecom_subsidy/pkg/core/pipeline"
	"telecom_subsidy/pkg/core/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every job in the configuration",
	Long:  `Expands the configured jobs into (country, scenario, strategy, confidence) tuples, runs them in parallel and writes the results to the configured sinks.`,
	RunE:  runEngine,
}

var (
	runWorkers  int
	runNoCache  bool
	runCacheDir string
	runStrict   bool
)

func init() {
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 0, "Tuples in flight (overrides config)")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "Recompute tuples even when inputs are unchanged")
	runCmd.Flags().StringVar(&runCacheDir, "cache-dir", "", "Result cache directory (default .cache/results)")
	runCmd.Flags().BoolVar(&runStrict, "strict-audit", false, "Fail tuples whose regions disagree with population / area")
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}
	if runWorkers > 0 {
		cfg.Run.Workers = runWorkers
	}

	logger := logging.InitLogger(cfg.Logging)
	logger.Info().
		Str("config", configPath).
		Int("jobs", len(cfg.Jobs)).
		Int("workers", cfg.Run.Workers).
		Str("policy", cfg.Run.Policy).
		Msg("Engine starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewEngineMetrics(reg)
	if err != nil {
		return err
	}
	if cfg.Metrics.Listen != "" {
		srv := serveMetrics(cfg.Metrics.Listen, metrics, logger)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	in, err := pipeline.LoadInputs(cfg.Inputs)
	if err != nil {
		return err
	}
	tuples, err := pipeline.Plan(cfg, in)
	if err != nil {
		return err
	}

	sink, err := openSinks(ctx, cfg.Output, logger)
	if err != nil {
		return err
	}

	orch, err := pipeline.NewOrchestrator(logger)
	if err != nil {
		return err
	}
	orch.SetSink(sink)
	orch.SetMetrics(metrics)
	orch.SetValidationConfig(pipeline.ValidationConfig{
		AuditDensity: cfg.Run.Audit || runStrict,
		StrictAudit:  runStrict,
	})

	runner := pipeline.NewRunner(orch, cfg.Run.Workers)
	if !runNoCache {
		cache, err := store.NewResultCache(runCacheDir)
		if err != nil {
			return err
		}
		runner.SetCache(cache)
	}

	batch, runErr := runner.RunAll(ctx, tuples)
	if err := sink.Close(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Failed to close result sinks")
		if runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return runErr
	}

	for _, f := range batch.Failed {
		fmt.Printf("skipped %s %s %s: %v\n", f.Key.Country, f.Key.Scenario, f.Key.Strategy, f.Err)
	}
	fmt.Printf("run %s: %d tuples complete (%d cached), %d skipped in %s\n",
		batch.RunID, len(batch.Results), batch.Cached, len(batch.Failed), batch.Duration.Round(time.Millisecond))
	return nil
}

// openSinks builds the sinks selected in cfg. Postgres output initialises
// the shared pool and creates missing tables.
func openSinks(ctx context.Context, cfg config.OutputConfig, logger arbor.ILogger) (store.MultiSink, error) {
	var sinks store.MultiSink

	if cfg.CSVDir != "" {
		csvSink, err := store.NewCSVSink(cfg.CSVDir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, csvSink)
	}
	if cfg.Report != "" {
		sinks = append(sinks, store.NewReportSink(cfg.Report))
	}
	if cfg.Postgres {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pg := store.NewPostgresSink(nil)
		if err := pg.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		sinks = append(sinks, closeFunc{Sink: pg, close: store.Close})
	}

	if len(sinks) == 0 {
		logger.Warn().Msg("No output configured; results are only logged")
	}
	return sinks, nil
}

// closeFunc runs an extra cleanup after the wrapped sink closes.
type closeFunc struct {
	store.Sink
	close func()
}

func (c closeFunc) Close(ctx context.Context) error {
	err := c.Sink.Close(ctx)
	c.close()
	return err
}

func serveMetrics(addr string, metrics *observability.EngineMetrics, logger arbor.ILogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info().Str("address", addr).Msg("Metrics server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	return srv
}
