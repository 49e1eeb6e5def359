package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

// Operation statuses recorded by the business metrics.
const (
	StatusSuccess          = "success"
	StatusNotFound         = "not_found"
	StatusConflict         = "conflict"
	StatusInvalid          = "invalid"
	StatusUnauthorized     = "unauthorized"
	StatusNotImplemented   = "not_implemented"
	StatusDecryptionFailed = "decryption_failed"
	StatusError            = "error"
)

// BusinessMetrics defines the interface for recording vault operation metrics.
type BusinessMetrics interface {
	// RecordOperation records a vault operation with its status.
	// Domain is the entity family ("secrets", "keys", "certificates") or "auth".
	// Operation examples: "secret_set", "key_encrypt", "certificate_create".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the duration of a vault operation in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// StatusFromError classifies an operation error into a low-cardinality status label.
func StatusFromError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case apperrors.Is(err, apperrors.ErrNotFound):
		return StatusNotFound
	case apperrors.Is(err, apperrors.ErrConflict):
		return StatusConflict
	case apperrors.Is(err, apperrors.ErrInvalidInput), apperrors.Is(err, apperrors.ErrInvalidOperation):
		return StatusInvalid
	case apperrors.Is(err, apperrors.ErrUnauthorized), apperrors.Is(err, apperrors.ErrForbidden):
		return StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrNotImplemented):
		return StatusNotImplemented
	case apperrors.Is(err, apperrors.ErrDecryptionFailed):
		return StatusDecryptionFailed
	default:
		return StatusError
	}
}

// Observe records both the count and the duration of an operation started at start.
func Observe(
	ctx context.Context,
	m BusinessMetrics,
	domain, operation string,
	start time.Time,
	err error,
) {
	status := StatusFromError(err)
	m.RecordOperation(ctx, domain, operation, status)
	m.RecordDuration(ctx, domain, operation, time.Since(start), status)
}

// businessMetrics implements BusinessMetrics using OpenTelemetry metrics.
type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
}

// NewBusinessMetrics creates a BusinessMetrics backed by the given meter provider.
// Metric names are prefixed with namespace (e.g., "keyvault").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of vault operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	// Key generation dominates latency, so the buckets reach into seconds.
	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of vault operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
	}, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

// RecordOperation increments the operation counter.
func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1, operationAttributes(domain, operation, status))
}

// RecordDuration records the operation duration in seconds.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

// RecordDuration does nothing.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}
