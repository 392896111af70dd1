package services

import (
	"context"
	"sync"
	"time"

	"github.com/bionicotaku/order-ingest/internal/metadata"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
)

var (
	ingestMetricsMu      sync.Mutex
	ingestMetricsEnabled bool
	ingestMessageCounter metric.Int64Counter
	ingestLagHistogram   metric.Float64Histogram
)

const (
	ingestMessageMetricName = "order_ingest_messages_total"
	ingestLagMetricName     = "order_ingest_delivery_lag_ms"

	resultProcessed    = "processed"
	resultDecodeFailed = "decode_failed"
)

var (
	attrSource   = attribute.Key("source")
	attrEncoding = attribute.Key("encoding")
	attrResult   = attribute.Key("result")
)

type ingestMetrics struct{}

func newIngestMetrics() *ingestMetrics {
	ingestMetricsMu.Lock()
	defer ingestMetricsMu.Unlock()
	if !ingestMetricsEnabled {
		initIngestMetricsLocked()
	}
	if !ingestMetricsEnabled {
		return nil
	}
	return &ingestMetrics{}
}

func initIngestMetricsLocked() {
	provider := otel.GetMeterProvider()
	if provider == nil {
		provider = noopmetric.NewMeterProvider()
	}
	meter := provider.Meter("order-ingest.services.ingest")

	var err error
	ingestMessageCounter, err = meter.Int64Counter(ingestMessageMetricName,
		metric.WithDescription("Number of deliveries handled, by encoding and result"))
	if err != nil {
		ingestMetricsEnabled = false
		return
	}
	ingestLagHistogram, err = meter.Float64Histogram(ingestLagMetricName,
		metric.WithDescription("Lag between Pub/Sub publish time and successful decode"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		ingestMetricsEnabled = false
		return
	}
	ingestMetricsEnabled = true
}

func (m *ingestMetrics) recordProcessed(ctx context.Context, meta metadata.DeliveryMetadata, encoding string) {
	if m == nil || ingestMessageCounter == nil {
		return
	}
	attrs := metric.WithAttributes(
		attrSource.String(sourceLabel(meta)),
		attrEncoding.String(encoding),
		attrResult.String(resultProcessed),
	)
	ingestMessageCounter.Add(ctx, 1, attrs)
	if meta.PublishTime.IsZero() || ingestLagHistogram == nil {
		return
	}
	lag := time.Since(meta.PublishTime).Milliseconds()
	if lag < 0 {
		lag = 0
	}
	ingestLagHistogram.Record(ctx, float64(lag), attrs)
}

func (m *ingestMetrics) recordDecodeFailure(ctx context.Context, meta metadata.DeliveryMetadata) {
	if m == nil || ingestMessageCounter == nil {
		return
	}
	ingestMessageCounter.Add(ctx, 1, metric.WithAttributes(
		attrSource.String(sourceLabel(meta)),
		attrEncoding.String("none"),
		attrResult.String(resultDecodeFailed),
	))
}

func sourceLabel(meta metadata.DeliveryMetadata) string {
	if meta.Source == "" {
		return "unknown"
	}
	return string(meta.Source)
}
