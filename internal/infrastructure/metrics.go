package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// ServiceName is the canonical name used in telemetry resources
	ServiceName = "ordenes-reporter"
	// ServiceVersion is embedded in telemetry resources
	ServiceVersion = "1.0.0"
	// MeterName identifies the application meter
	MeterName = "ordenescli"
)

// MetricsProviders holds the initialized telemetry providers and the
// instruments used across the application.
type MetricsProviders struct {
	MeterProvider *sdkmetric.MeterProvider
	Meter         metric.Meter
	Handler       http.Handler

	// HTTP instruments
	RequestCounter  metric.Int64Counter
	RequestDuration metric.Float64Histogram

	// Business instruments
	UploadsTotal     metric.Int64Counter
	UploadRows       metric.Int64Histogram
	SummariesTotal   metric.Int64Counter
	ExportsTotal     metric.Int64Counter
	DatasetsActive   metric.Int64UpDownCounter
	WSClientsActive  metric.Int64UpDownCounter
}

// InitializeMetrics sets up the OpenTelemetry meter provider backed by a
// Prometheus exporter and registers the application instruments. The
// returned Handler serves the scrape endpoint.
func InitializeMetrics(ctx context.Context, logger *slog.Logger) (*MetricsProviders, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	providers := &MetricsProviders{
		MeterProvider: mp,
		Meter:         mp.Meter(MeterName),
		Handler:       promhttp.Handler(),
	}

	if err := providers.createInstruments(); err != nil {
		return nil, fmt.Errorf("failed to create instruments: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "metrics initialized",
			slog.String("service", ServiceName),
			slog.String("exporter", "prometheus"))
	}

	return providers, nil
}

func (p *MetricsProviders) createInstruments() error {
	var err error

	p.RequestCounter, err = p.Meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	p.RequestDuration, err = p.Meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	p.UploadsTotal, err = p.Meter.Int64Counter(
		"workbook_uploads_total",
		metric.WithDescription("Total number of workbook uploads"),
		metric.WithUnit("{upload}"),
	)
	if err != nil {
		return err
	}

	p.UploadRows, err = p.Meter.Int64Histogram(
		"workbook_upload_rows",
		metric.WithDescription("Rows parsed per uploaded workbook"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return err
	}

	p.SummariesTotal, err = p.Meter.Int64Counter(
		"summaries_computed_total",
		metric.WithDescription("Total number of summary tables computed"),
		metric.WithUnit("{summary}"),
	)
	if err != nil {
		return err
	}

	p.ExportsTotal, err = p.Meter.Int64Counter(
		"exports_total",
		metric.WithDescription("Total number of report exports"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		return err
	}

	p.DatasetsActive, err = p.Meter.Int64UpDownCounter(
		"datasets_active",
		metric.WithDescription("Number of datasets currently held in memory"),
		metric.WithUnit("{dataset}"),
	)
	if err != nil {
		return err
	}

	p.WSClientsActive, err = p.Meter.Int64UpDownCounter(
		"websocket_clients_active",
		metric.WithDescription("Number of connected websocket clients"),
		metric.WithUnit("{client}"),
	)
	return err
}

// RecordUpload counts a workbook upload and its parsed row count.
func (p *MetricsProviders) RecordUpload(ctx context.Context, rows int) {
	p.UploadsTotal.Add(ctx, 1)
	p.UploadRows.Record(ctx, int64(rows))
}

// RecordSummary counts a computed summary.
func (p *MetricsProviders) RecordSummary(ctx context.Context) {
	p.SummariesTotal.Add(ctx, 1)
}

// RecordExport counts an export in the given format.
func (p *MetricsProviders) RecordExport(ctx context.Context, format string) {
	p.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordDatasetDelta adjusts the active dataset gauge.
func (p *MetricsProviders) RecordDatasetDelta(ctx context.Context, delta int64) {
	p.DatasetsActive.Add(ctx, delta)
}

// RecordWSClientDelta adjusts the connected websocket client gauge.
func (p *MetricsProviders) RecordWSClientDelta(ctx context.Context, delta int64) {
	p.WSClientsActive.Add(ctx, delta)
}

// Shutdown flushes and stops the meter provider.
func (p *MetricsProviders) Shutdown(ctx context.Context) error {
	if p == nil || p.MeterProvider == nil {
		return nil
	}
	return p.MeterProvider.Shutdown(ctx)
}
