package loader

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("telesport.loader")

var (
	loadsStarted   metric.Int64Counter
	loadsCompleted metric.Int64Counter
	staleDiscarded metric.Int64Counter
	loadsCancelled metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments against the global meter provider. Safe to call
// repeatedly; when the provider is the no-op default the instruments are no-ops.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		if loadsStarted, err = meter.Int64Counter("loads_started_total",
			metric.WithDescription("Number of dataset loads issued")); err != nil {
			metricsErr = err
			return
		}
		if loadsCompleted, err = meter.Int64Counter("loads_completed_total",
			metric.WithDescription("Number of loads whose result became visible, by outcome")); err != nil {
			metricsErr = err
			return
		}
		if staleDiscarded, err = meter.Int64Counter("loads_stale_discarded_total",
			metric.WithDescription("Number of completions dropped because their token was superseded or cancelled")); err != nil {
			metricsErr = err
			return
		}
		if loadsCancelled, err = meter.Int64Counter("loads_cancelled_total",
			metric.WithDescription("Number of teardown cancellations")); err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordStarted(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	loadsStarted.Add(ctx, 1)
}

func recordCompleted(ctx context.Context, state State) {
	if initMetrics() != nil {
		return
	}
	loadsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", state.String())))
}

func recordStale(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	staleDiscarded.Add(ctx, 1)
}

func recordCancelled(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	loadsCancelled.Add(ctx, 1)
}
