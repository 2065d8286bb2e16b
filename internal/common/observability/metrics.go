package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"partner-dashboard/internal/common/logger"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	tracerProvider  *sdktrace.TracerProvider
	meter           otelmetric.Meter
	tracer          trace.Tracer
	refreshCounter  otelmetric.Int64Counter
	refreshDuration otelmetric.Float64Histogram
}

// Option customises New.
type Option func(*options)

type options struct {
	registerer promclient.Registerer
	sampler    sdktrace.Sampler
}

// WithRegisterer sends otel metrics to reg instead of the default
// Prometheus registry.
func WithRegisterer(reg promclient.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithSampler overrides the span sampler.
func WithSampler(s sdktrace.Sampler) Option {
	return func(o *options) { o.sampler = s }
}

func New(serviceName string, log logger.Logger, opts ...Option) *Observability {
	o := options{sampler: sdktrace.ParentBased(sdktrace.AlwaysSample())}
	for _, opt := range opts {
		opt(&o)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(o.sampler),
	)
	otel.SetTracerProvider(tp)

	obs := &Observability{
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
	}

	var exporterOpts []prometheus.Option
	if o.registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(o.registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		log.WithError(err).Warn("Failed to create Prometheus exporter, otel metrics disabled", nil)
		return obs
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	refreshCounter, _ := meter.Int64Counter(
		"partners.refresh",
		otelmetric.WithDescription("Number of partner refreshes"),
	)

	refreshDuration, _ := meter.Float64Histogram(
		"partners.refresh.duration",
		otelmetric.WithDescription("Partner refresh duration"),
		otelmetric.WithUnit("ms"),
	)

	obs.meterProvider = provider
	obs.meter = meter
	obs.refreshCounter = refreshCounter
	obs.refreshDuration = refreshDuration
	return obs
}

// StartSpan starts a span on the service tracer. A nil or partially built
// Observability hands out no-op spans.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordRefresh(ctx context.Context, status string) {
	if o != nil && o.refreshCounter != nil {
		o.refreshCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordRefreshDuration(ctx context.Context, duration time.Duration, status string) {
	if o != nil && o.refreshDuration != nil {
		o.refreshDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
