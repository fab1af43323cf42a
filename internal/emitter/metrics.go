package emitter

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/yairfalse/virta/pkg/record"
)

// MetricsSink counts emitted records via OTEL metrics. It transmits
// nothing; pair it with a real sink through MultiSink.
type MetricsSink struct {
	meter metric.Meter

	setsTotal    metric.Int64Counter
	recordsTotal metric.Int64Counter
	vmsTotal     metric.Int64Counter
}

// NewMetricsSink creates a metrics sink on the global meter provider.
func NewMetricsSink() (*MetricsSink, error) {
	s := &MetricsSink{meter: otel.Meter("virta")}

	var err error
	s.setsTotal, err = s.meter.Int64Counter(
		"virta_sets_total",
		metric.WithDescription("Record sets emitted"),
	)
	if err != nil {
		return nil, fmt.Errorf("create sets counter: %w", err)
	}

	s.recordsTotal, err = s.meter.Int64Counter(
		"virta_records_total",
		metric.WithDescription("Records emitted, including nested components"),
	)
	if err != nil {
		return nil, fmt.Errorf("create records counter: %w", err)
	}

	s.vmsTotal, err = s.meter.Int64Counter(
		"virta_vms_total",
		metric.WithDescription("Virtual machine records emitted"),
	)
	if err != nil {
		return nil, fmt.Errorf("create vms counter: %w", err)
	}

	return s, nil
}

// Emit records counters for the set.
func (s *MetricsSink) Emit(ctx context.Context, set record.Set) error {
	if set.Empty() {
		return nil
	}
	s.setsTotal.Add(ctx, 1)
	s.recordsTotal.Add(ctx, int64(set.Len()))
	s.vmsTotal.Add(ctx, int64(len(set.VirtualMachines)))
	return nil
}

// Close is a no-op for the metrics sink.
func (s *MetricsSink) Close() error {
	return nil
}
