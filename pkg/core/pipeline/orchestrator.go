// Package pipeline runs (country, scenario, strategy) tuples through the
// demand, cost and assessment stages and hands results to the sinks.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"telecom_subsidy/pkg/core/assess"
	"telecom_subsidy/pkg/core/costs"
	"telecom_subsidy/pkg/core/demand"
	"telecom_subsidy/pkg/core/ingest"
	"telecom_subsidy/pkg/core/observability"
	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/core/store"
	"telecom_subsidy/pkg/models"
)

const costStage = "costs"

// Tuple is one unit of work. Everything it references is read-only, so
// tuples can run concurrently.
type Tuple struct {
	Key         models.RunKey
	Strategy    models.Strategy
	Scenario    models.Scenario
	Regions     []models.RawRegion
	Global      *params.GlobalParameters
	Country     *params.CountryParameters
	CoreLUT     *params.CoreLookupTable
	Penetration params.PenetrationLUT
	Smartphones params.SmartphoneLUT
	Years       []int
	Policy      assess.Policy

	// Inputs digests the input files; it keys the result cache.
	Inputs string
}

// ValidationConfig controls pre-run checks.
type ValidationConfig struct {
	AuditDensity bool // compare population_km2 with population / area
	StrictAudit  bool // treat material density mismatches as errors
}

// Orchestrator runs single tuples. The stages inside one tuple are
// sequential and deterministic.
type Orchestrator struct {
	logger     arbor.ILogger
	metrics    *observability.EngineMetrics
	tracer     trace.Tracer
	sink       store.Sink
	validation ValidationConfig
}

// NewOrchestrator creates an orchestrator. It fails when the sharing table
// is inconsistent with the asset catalogue.
func NewOrchestrator(logger arbor.ILogger) (*Orchestrator, error) {
	if err := costs.ValidateSharingTable(); err != nil {
		return nil, fmt.Errorf("sharing table: %w", err)
	}
	if logger == nil {
		logger = arbor.NewLogger()
	}
	return &Orchestrator{
		logger: logger,
		tracer: observability.Tracer(),
	}, nil
}

// SetSink injects the result sink. Without one results are only returned.
func (o *Orchestrator) SetSink(sink store.Sink) {
	o.sink = sink
}

// SetMetrics injects the metrics collector.
func (o *Orchestrator) SetMetrics(m *observability.EngineMetrics) {
	o.metrics = m
}

// SetValidationConfig updates the pre-run checks.
func (o *Orchestrator) SetValidationConfig(cfg ValidationConfig) {
	o.validation = cfg
}

// RunTuple estimates demand, costs every region and assesses the batch.
// Regions failing with a configuration or unsupported-variant error are
// reported in the result and skipped; any other error aborts the tuple.
func (o *Orchestrator) RunTuple(ctx context.Context, t Tuple) (res *models.TupleResult, err error) {
	ctx, span := o.tracer.Start(ctx, "pipeline.RunTuple", trace.WithAttributes(
		attribute.String("country", t.Key.Country),
		attribute.String("scenario", t.Key.Scenario),
		attribute.String("strategy", t.Key.Strategy),
		attribute.Int("confidence", t.Key.Confidence),
		attribute.Int("regions", len(t.Regions)),
	))
	done := o.metrics.TupleStarted(t.Key.Country)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		done(err)
		span.End()
	}()

	start := time.Now()
	log := o.logger.WithCorrelationId(t.Key.RunID)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.validateInputs(t); err != nil {
		return nil, err
	}

	_, demandSpan := o.tracer.Start(ctx, "demand.Estimate")
	dem, err := demand.Estimate(demand.Input{
		Key:         t.Key,
		Regions:     t.Regions,
		Strategy:    t.Strategy,
		Scenario:    t.Scenario,
		Global:      t.Global,
		Country:     t.Country,
		Years:       t.Years,
		Penetration: t.Penetration,
		Smartphones: t.Smartphones,
		Logger:      log,
	})
	demandSpan.End()
	if err != nil {
		return nil, fmt.Errorf("demand stage: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, costSpan := o.tracer.Start(ctx, "costs.FindNetworkCost")
	costed, costFailures, err := o.costRegions(t, dem.Regions, log)
	costSpan.SetAttributes(attribute.Int("failures", len(costFailures)))
	costSpan.End()
	if err != nil {
		return nil, fmt.Errorf("cost stage: %w", err)
	}

	_, assessSpan := o.tracer.Start(ctx, "assess.Assess")
	out, err := assess.Assess(assess.Input{
		Key:      t.Key,
		Regions:  costed,
		Strategy: t.Strategy,
		Country:  t.Country,
		Policy:   t.Policy,
		Logger:   log,
	})
	assessSpan.End()
	if err != nil {
		return nil, fmt.Errorf("assessment stage: %w", err)
	}

	failures := make([]models.RegionFailure, 0, len(dem.Failures)+len(costFailures)+len(out.Failures))
	failures = append(failures, dem.Failures...)
	failures = append(failures, costFailures...)
	failures = append(failures, out.Failures...)

	res = &models.TupleResult{
		Key:           t.Key,
		Regions:       out.Regions,
		Annual:        dem.Annual,
		Failures:      failures,
		Summary:       out.Summary,
		Dropped:       dem.Dropped,
		PoolExact:     out.Ledger.Pool.StringFixed(2),
		UsedExact:     out.Ledger.Used.StringFixed(2),
		RequiredExact: out.Ledger.Required.StringFixed(2),
		StartedAt:     start,
		Duration:      time.Since(start),
	}

	if err := o.save(ctx, res); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("assessed", len(res.Regions)),
		attribute.Int("failed", len(res.Failures)),
		attribute.Float64("required_state_subsidy", res.Summary.RequiredStateSubsidy),
	)
	log.Info().
		Str("country", t.Key.Country).
		Str("scenario", t.Key.Scenario).
		Str("strategy", t.Key.Strategy).
		Int("regions", len(res.Regions)).
		Int("failed", len(res.Failures)).
		Int("dropped", res.Dropped).
		Str("state_subsidy", res.RequiredExact).
		Str("duration", res.Duration.String()).
		Msg("Tuple complete")

	return res, nil
}

// save hands a result to the sink and records its metrics.
func (o *Orchestrator) save(ctx context.Context, res *models.TupleResult) error {
	if o.sink != nil {
		if err := o.sink.Save(ctx, res); err != nil {
			return fmt.Errorf("storage failed: %w", err)
		}
	}
	o.metrics.RecordResult(res)
	return nil
}

// costRegions runs the cost stage region by region with the same recovery
// rule as the other stages.
func (o *Orchestrator) costRegions(t Tuple, regions []models.DemandRegion, log arbor.ILogger) ([]models.CostedRegion, []models.RegionFailure, error) {
	costed := make([]models.CostedRegion, 0, len(regions))
	var failures []models.RegionFailure

	for _, r := range regions {
		c, err := costs.FindNetworkCost(costs.Context{
			Region:   r,
			Strategy: t.Strategy,
			Global:   t.Global,
			Country:  t.Country,
			CoreLUT:  t.CoreLUT,
		})
		if err != nil {
			if !models.IsRecoverable(err) {
				return nil, nil, fmt.Errorf("region %s: %w", r.ID, err)
			}
			failures = append(failures, models.RegionFailure{
				RegionID: r.ID,
				Stage:    costStage,
				Kind:     models.ErrorKind(err),
				Err:      err,
			})
			log.Warn().
				Str("region", r.ID).
				Str("kind", models.ErrorKind(err)).
				Err(err).
				Msg("Skipping region in cost stage")
			continue
		}
		costed = append(costed, c)
	}
	return costed, failures, nil
}

// validateInputs checks the tuple-wide inputs that every region needs.
func (o *Orchestrator) validateInputs(t Tuple) error {
	if t.Global == nil || t.Country == nil {
		return models.NewConfigError("parameters", t.Key.Country, "global and country parameters are required")
	}
	if t.CoreLUT == nil {
		return models.NewConfigError("core_lut", t.Key.Country, "missing")
	}
	if err := t.Country.ValidateRegime(t.Strategy.Networks); err != nil {
		return err
	}

	if !o.validation.AuditDensity {
		return nil
	}
	bad := ingest.Mismatches(ingest.VerifyDensity(t.Regions))
	for _, c := range bad {
		o.logger.Warn().
			Str("region", c.RegionID).
			Float64("reported", c.ReportedValue).
			Float64("calculated", c.CalculatedValue).
			Msg("Population density mismatch")
	}
	if o.validation.StrictAudit && len(bad) > 0 {
		return models.NewConfigError("population_km2", t.Key.Country,
			fmt.Sprintf("%d regions disagree with population / area", len(bad)))
	}
	return nil
}
