// Command api serves single-batch assessments over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"telecom_subsidy/pkg/api/assessment"
	"telecom_subsidy/pkg/core/logging"
	"telecom_subsidy/pkg/core/observability"
	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/core/pipeline"
)

func main() {
	addr := flag.String("listen", ":8080", "HTTP listen address")
	globalPath := flag.String("global", "global.yaml", "Global parameter file")
	countriesPath := flag.String("countries", "countries.yaml", "Country parameter file")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	godotenv.Load()
	logger := logging.InitLogger(logging.Config{Level: *level, Output: []string{"stdout"}})

	global, err := params.LoadGlobal(*globalPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load global parameters")
		os.Exit(1)
	}
	countries, err := params.LoadCountries(*countriesPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load country parameters")
		os.Exit(1)
	}

	metrics, err := observability.NewEngineMetrics(prometheus.NewRegistry())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to register metrics")
		os.Exit(1)
	}
	orch, err := pipeline.NewOrchestrator(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create orchestrator")
		os.Exit(1)
	}
	orch.SetMetrics(metrics)

	mux := http.NewServeMux()
	assessment.NewHandler(global, countries, orch, logger).Register(mux)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info().Str("address", *addr).Int("countries", len(countries)).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Server shutdown failed")
	}
}
