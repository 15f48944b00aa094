package http

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/freekieb7/pebble/http"

const (
	outcomeHandler  = "handler"
	outcomeStatic   = "static"
	outcomeNotFound = "not_found"
)

type serverMetrics struct {
	connections metric.Int64Counter
	active      metric.Int64UpDownCounter
	requests    metric.Int64Counter
	parseErrors metric.Int64Counter
	duration    metric.Float64Histogram
}

func newServerMetrics(meter metric.Meter) *serverMetrics {
	metrics, err := buildServerMetrics(meter)
	if err != nil {
		otel.Handle(err)
		metrics, _ = buildServerMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	}
	return metrics
}

func buildServerMetrics(meter metric.Meter) (*serverMetrics, error) {
	var (
		m   serverMetrics
		err error
	)

	if m.connections, err = meter.Int64Counter("http.server.connections",
		metric.WithDescription("Accepted connections"),
		metric.WithUnit("{connection}")); err != nil {
		return nil, err
	}
	if m.active, err = meter.Int64UpDownCounter("http.server.active_connections",
		metric.WithDescription("Connections currently owned by a worker"),
		metric.WithUnit("{connection}")); err != nil {
		return nil, err
	}
	if m.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Requests answered, by routing outcome"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if m.parseErrors, err = meter.Int64Counter("http.server.parse_errors",
		metric.WithDescription("Connections closed because the request could not be parsed"),
		metric.WithUnit("{error}")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("Time from accept to connection close"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *serverMetrics) connOpened(ctx context.Context) {
	m.connections.Add(ctx, 1)
	m.active.Add(ctx, 1)
}

func (m *serverMetrics) connClosed(ctx context.Context, started time.Time) {
	m.active.Add(ctx, -1)
	m.duration.Record(ctx, time.Since(started).Seconds())
}

func (m *serverMetrics) requestServed(ctx context.Context, outcome string, status int) {
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("status", status),
	))
}

func (m *serverMetrics) parseFailed(ctx context.Context, err error) {
	m.parseErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", parseErrorKind(err))))
}

func parseErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedRequestLine):
		return "malformed_request_line"
	case errors.Is(err, ErrIncompleteRequest):
		return "incomplete_request"
	case errors.Is(err, ErrBodyTruncated):
		return "body_truncated"
	case errors.Is(err, ErrBodyTooLarge):
		return "body_too_large"
	default:
		return "io"
	}
}
