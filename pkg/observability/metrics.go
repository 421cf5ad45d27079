package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricOpsTotal    = "rangelist.ops.total"
	metricOpDuration  = "rangelist.op.duration.seconds"
	metricErrorsTotal = "rangelist.errors.total"

	attrKind = "kind"
)

// durationBucketBoundaries covers 1µs to 1s: single breakpoint mutations are
// sub-microsecond, hibernate/boot cycles on large accumulators reach the
// high buckets.
var durationBucketBoundaries = []float64{
	0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1,
}

// OpMetrics holds the OTel instruments for Rate, Error, Duration metrics of
// accumulator operations.
type OpMetrics struct {
	opsTotal    metric.Int64Counter
	opDuration  metric.Float64Histogram
	errorsTotal metric.Int64Counter
}

// NewOpMetrics creates the op metric instruments from the given meter.
func NewOpMetrics(mt metric.Meter) (*OpMetrics, error) {
	opsTotal, err := mt.Int64Counter(metricOpsTotal,
		metric.WithDescription("Total number of accumulator operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOpsTotal, err)
	}

	opDuration, err := mt.Float64Histogram(metricOpDuration,
		metric.WithDescription("Accumulator operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOpDuration, err)
	}

	errorsTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	return &OpMetrics{
		opsTotal:    opsTotal,
		opDuration:  opDuration,
		errorsTotal: errorsTotal,
	}, nil
}

// RecordOp records one completed operation of the given kind and its
// duration in seconds.
func (om *OpMetrics) RecordOp(ctx context.Context, kind string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String(attrKind, kind))

	om.opsTotal.Add(ctx, 1, attrs)
	om.opDuration.Record(ctx, seconds, attrs)
}

// RecordError records one failed operation of the given kind.
func (om *OpMetrics) RecordError(ctx context.Context, kind string) {
	om.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
}
