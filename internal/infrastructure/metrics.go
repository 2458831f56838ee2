package infrastructure

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"

	"esgpulse/pkg/contracts/domain"
)

const (
	// ServiceName identifies this service in metric resources.
	ServiceName = "esg-document-processor"
	// MeterName is the instrumentation scope for pipeline metrics.
	MeterName = "esgpulse"
)

// Metrics bundles the pipeline instruments and the Prometheus handler that
// exposes them.
type Metrics struct {
	provider *sdkmetric.MeterProvider

	// Handler serves the Prometheus scrape endpoint.
	Handler http.Handler

	DocumentsProcessed metric.Int64Counter
	DocumentsFailed    metric.Int64Counter
	DocumentsSkipped   metric.Int64Counter
	FindingsExtracted  metric.Int64Counter
	ProcessingDuration metric.Float64Histogram
}

// NewMetrics wires an OTel meter provider to a dedicated Prometheus registry
// and creates the pipeline instruments.
func NewMetrics(version string) (*Metrics, error) {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	meter := provider.Meter(MeterName)

	m := &Metrics{
		provider: provider,
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if m.DocumentsProcessed, err = meter.Int64Counter("esg_documents_processed_total",
		metric.WithDescription("Documents processed successfully")); err != nil {
		return nil, err
	}
	if m.DocumentsFailed, err = meter.Int64Counter("esg_documents_failed_total",
		metric.WithDescription("Documents that failed analysis or processing")); err != nil {
		return nil, err
	}
	if m.DocumentsSkipped, err = meter.Int64Counter("esg_documents_skipped_total",
		metric.WithDescription("Files skipped for unsupported extensions")); err != nil {
		return nil, err
	}
	if m.FindingsExtracted, err = meter.Int64Counter("esg_findings_extracted_total",
		metric.WithDescription("ESG findings extracted, by category")); err != nil {
		return nil, err
	}
	if m.ProcessingDuration, err = meter.Float64Histogram("esg_processing_duration_seconds",
		metric.WithDescription("Per-document processing duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordFindings increments the findings counter per category.
func (m *Metrics) RecordFindings(ctx context.Context, metrics domain.ESGMetrics) {
	if m == nil {
		return
	}
	for _, category := range domain.Categories {
		if n := len(metrics[category]); n > 0 {
			m.FindingsExtracted.Add(ctx, int64(n),
				metric.WithAttributes(attribute.String("category", string(category))))
		}
	}
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
