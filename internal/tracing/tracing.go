// Package tracing provides OpenTelemetry instrumentation.
package tracing

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "gameid"
	serviceVersion = "0.3.0"
)

// Attributes recorded on resolution spans.
const (
	ProviderKey   = attribute.Key("gameid.provider")
	GameNameKey   = attribute.Key("gameid.game.name")
	VariantsKey   = attribute.Key("gameid.resolve.variants")
	CandidatesKey = attribute.Key("gameid.resolve.candidates")
	ScoreKey      = attribute.Key("gameid.resolve.score")
)

// Config holds tracing configuration.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"` // OTLP gRPC endpoint, e.g. "localhost:4317"
}

// DefaultConfig enables tracing when OTEL_EXPORTER_OTLP_ENDPOINT is set.
func DefaultConfig() Config {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	return Config{
		Enabled:  endpoint != "",
		Endpoint: endpoint,
	}
}

var tracer trace.Tracer

// Setup initializes the tracer provider and returns its shutdown function.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		tracer = otel.Tracer(serviceName)
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(serviceName)

	return tp.Shutdown, nil
}

// Tracer returns the configured tracer.
func Tracer() trace.Tracer {
	if tracer == nil {
		return otel.Tracer(serviceName)
	}
	return tracer
}

// StartSpan starts a new span with the given name.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// Fail records err on the span and marks it as errored. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// StartResolve opens the span covering one resolution of name against
// provider.
func StartResolve(ctx context.Context, provider, name string, variants int) (context.Context, trace.Span) {
	return StartSpan(ctx, "resolve."+provider,
		trace.WithAttributes(
			ProviderKey.String(provider),
			GameNameKey.String(name),
			VariantsKey.Int(variants),
		),
	)
}

// Candidates records how many unique candidates were ranked.
func Candidates(span trace.Span, n int) {
	span.SetAttributes(CandidatesKey.Int(n))
}

// Matched records the winning score.
func Matched(span trace.Span, score float64) {
	span.SetAttributes(ScoreKey.Float64(score))
}
