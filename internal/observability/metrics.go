package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RedisCommands records Redis round trips by command and result (ok, nil, error).
	// Pipelines are recorded once under the command "pipeline".
	RedisCommands = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_redis_command_duration_seconds",
		Help:    "Redis command latency in seconds",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"command", "result"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_lookups_total",
		Help: "Cache lookups by key family and result",
	}, []string{"family", "result"})

	// CommentEvents counts comment events published to the board feeds.
	CommentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_comment_events_total",
		Help: "Comment events published by type",
	}, []string{"event_type"})

	// BoardFeedSubscribers is the number of websocket subscribers across all board feeds.
	BoardFeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_board_feed_subscribers",
		Help: "Active websocket subscribers of board comment feeds",
	})

	// WebSocketBackpressureDrops counts messages dropped because a subscriber fell behind.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
