package screen

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/waozixyz/paywall/screen"

// telemetry traces every commerce call and counts their outcomes.
type telemetry struct {
	tracer    trace.Tracer
	fetches   metric.Int64Counter
	purchases metric.Int64Counter
	restores  metric.Int64Counter
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	fetches, err := meter.Int64Counter("paywall.products.fetches",
		metric.WithDescription("Product fetches by outcome"),
	)
	if err != nil {
		return nil, err
	}
	purchases, err := meter.Int64Counter("paywall.purchases",
		metric.WithDescription("Purchases by outcome"),
	)
	if err != nil {
		return nil, err
	}
	restores, err := meter.Int64Counter("paywall.restores",
		metric.WithDescription("Restores by outcome"),
	)
	if err != nil {
		return nil, err
	}
	return &telemetry{
		tracer:    tp.Tracer(instrumentationName),
		fetches:   fetches,
		purchases: purchases,
		restores:  restores,
	}, nil
}

func (t *telemetry) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// end closes span and counts the outcome on c.
func (t *telemetry) end(ctx context.Context, span trace.Span, c metric.Int64Counter, outcome string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("paywall.outcome", outcome))
	span.End()
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
