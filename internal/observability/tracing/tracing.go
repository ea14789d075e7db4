// Package tracing связывает трассировку движка чекинов с OpenTelemetry.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/magabrotheeeer/fitcheck/internal/config"
	"github.com/magabrotheeeer/fitcheck/internal/services/checkin"
)

const instrumentationName = "github.com/magabrotheeeer/fitcheck/internal/services/checkin"

// Setup настраивает глобальный TracerProvider. Если endpoint не задан,
// возвращает no-op shutdown и ничего не регистрирует.
func Setup(ctx context.Context, cfg config.Tracing) (shutdown func(context.Context) error, err error) {
	const op = "tracing.Setup"
	noop := func(context.Context) error { return nil }

	if cfg.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("%s: %w", op, err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return noop, fmt.Errorf("%s: %w", op, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer реализует checkin.Tracer поверх OpenTelemetry.
type Tracer struct {
	tracer trace.Tracer
}

// New создаёт Tracer. При nil используется глобальный провайдер.
func New(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{tracer: tp.Tracer(instrumentationName)}
}

// Start открывает span для операции op.
func (t *Tracer) Start(ctx context.Context, op, description string) (context.Context, checkin.Span) {
	ctx, span := t.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("description", description)))
	return ctx, &Span{span: span}
}

// Span оборачивает trace.Span.
type Span struct {
	span trace.Span
}

// SetTag записывает атрибут span'а.
func (s *Span) SetTag(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

// Finish завершает span.
func (s *Span) Finish() {
	s.span.End()
}
