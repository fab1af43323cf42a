package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// RunRecorder instruments collection passes: run counts, failures,
// per-item skips and wall time.
type RunRecorder struct {
	runsTotal     metric.Int64Counter
	failuresTotal metric.Int64Counter
	skippedTotal  metric.Int64Counter
	runDuration   metric.Float64Histogram
}

// NewRunRecorder creates a recorder on the global meter provider.
func NewRunRecorder() (*RunRecorder, error) {
	meter := otel.Meter("virta")
	r := &RunRecorder{}

	var err error
	r.runsTotal, err = meter.Int64Counter(
		"virta_runs_total",
		metric.WithDescription("Collection passes started"),
	)
	if err != nil {
		return nil, fmt.Errorf("create runs counter: %w", err)
	}

	r.failuresTotal, err = meter.Int64Counter(
		"virta_run_failures_total",
		metric.WithDescription("Collection passes that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("create failures counter: %w", err)
	}

	r.skippedTotal, err = meter.Int64Counter(
		"virta_vms_skipped_total",
		metric.WithDescription("VMs skipped for missing IP configuration"),
	)
	if err != nil {
		return nil, fmt.Errorf("create skipped counter: %w", err)
	}

	r.runDuration, err = meter.Float64Histogram(
		"virta_run_duration_seconds",
		metric.WithDescription("Wall time of one collection pass"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return r, nil
}

// Record instruments one finished pass.
func (r *RunRecorder) Record(ctx context.Context, skipped int, duration time.Duration, err error) {
	r.runsTotal.Add(ctx, 1)
	if err != nil {
		r.failuresTotal.Add(ctx, 1)
	}
	if skipped > 0 {
		r.skippedTotal.Add(ctx, int64(skipped))
	}
	r.runDuration.Record(ctx, duration.Seconds())
}
