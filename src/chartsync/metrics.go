package chartsync

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("telesport.chartsync")

var (
	handlesCreated   metric.Int64Counter
	handlesDestroyed metric.Int64Counter
	handlesLive      metric.Int64UpDownCounter
	reconciles       metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		if handlesCreated, err = meter.Int64Counter("chart_handles_created_total",
			metric.WithDescription("Number of chart instances created")); err != nil {
			metricsErr = err
			return
		}
		if handlesDestroyed, err = meter.Int64Counter("chart_handles_destroyed_total",
			metric.WithDescription("Number of chart instances destroyed")); err != nil {
			metricsErr = err
			return
		}
		if handlesLive, err = meter.Int64UpDownCounter("chart_handles_live",
			metric.WithDescription("Chart instances currently alive")); err != nil {
			metricsErr = err
			return
		}
		if reconciles, err = meter.Int64Counter("chart_reconcile_total",
			metric.WithDescription("Reconcile calls by outcome")); err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordHandleCreated(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	handlesCreated.Add(ctx, 1)
	handlesLive.Add(ctx, 1)
}

func recordHandleDestroyed(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	handlesDestroyed.Add(ctx, 1)
	handlesLive.Add(ctx, -1)
}

func recordReconcile(ctx context.Context, o Outcome) {
	if initMetrics() != nil {
		return
	}
	reconciles.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", o.String())))
}
