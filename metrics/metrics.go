package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Distribution
var defaultMillisecondsDistribution = view.Distribution(0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 3000, 4000, 5000, 7500, 10000, 20000, 50000, 100000)

// Tags
var (
	Outcome, _   = tag.NewKey("outcome")
	Transport, _ = tag.NewKey("transport")
	Method, _    = tag.NewKey("method")
)

// Measures
var (
	RequestsRegistered  = stats.Int64("ethrpc/requests_registered", "Counter of requests entered into the registry", stats.UnitDimensionless)
	RequestsResolved    = stats.Int64("ethrpc/requests_resolved", "Counter of requests resolved, by outcome", stats.UnitDimensionless)
	ResolutionAnomalies = stats.Int64("ethrpc/resolution_anomalies", "Counter of resolutions for unknown request ids", stats.UnitDimensionless)
	RequestsOutstanding = stats.Int64("ethrpc/requests_outstanding", "Number of requests waiting for resolution", stats.UnitDimensionless)
	ResolutionLatency   = stats.Float64("ethrpc/resolution_latency_ms", "Time between registration and resolution", stats.UnitMilliseconds)
)

var (
	RequestsRegisteredView = &view.View{
		Measure:     RequestsRegistered,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Transport, Method},
	}
	RequestsResolvedView = &view.View{
		Measure:     RequestsResolved,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Outcome, Transport},
	}
	ResolutionAnomaliesView = &view.View{
		Measure:     ResolutionAnomalies,
		Aggregation: view.Count(),
	}
	RequestsOutstandingView = &view.View{
		Measure:     RequestsOutstanding,
		Aggregation: view.LastValue(),
	}
	ResolutionLatencyView = &view.View{
		Measure:     ResolutionLatency,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{Transport},
	}
)

// DefaultViews is the set of views registered by the daemon.
var DefaultViews = []*view.View{
	RequestsRegisteredView,
	RequestsResolvedView,
	ResolutionAnomaliesView,
	RequestsOutstandingView,
	ResolutionLatencyView,
}

// SinceInMilliseconds returns the duration of time since the provide time as a float64.
func SinceInMilliseconds(startTime time.Time) float64 {
	return float64(time.Since(startTime).Nanoseconds()) / 1e6
}

// RecordWithTags ignores tag errors; metrics must never fail a request.
func RecordWithTags(ctx context.Context, mutators []tag.Mutator, ms ...stats.Measurement) {
	_ = stats.RecordWithTags(ctx, mutators, ms...)
}
