package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AccessDenied counts reads and writes rejected by the visibility guard or ownership checks.
	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_access_denied_total",
		Help: "Total number of operations rejected for missing membership or ownership",
	}, []string{"operation"})

	// LikeMutations counts like/unlike attempts by subject kind and outcome.
	LikeMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_like_mutations_total",
		Help: "Total like ledger mutations by subject, operation and outcome",
	}, []string{"subject", "operation", "outcome"})

	// CommentTreeNodes records the number of nodes per built comment tree.
	CommentTreeNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agora_comment_tree_nodes",
		Help:    "Number of comments assembled per discussion tree",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// FeedSubscribers is the gauge of open discussion feed websockets.
	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_discussion_feed_subscribers",
		Help: "Number of open discussion feed websocket connections",
	})

	// EventsPublished counts realtime events by type and result.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_events_published_total",
		Help: "Total realtime events published by type and result",
	}, []string{"event_type", "result"})

	// GoalTransitions counts goals leaving IN_PROGRESS by resulting status.
	GoalTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_goal_transitions_total",
		Help: "Total goals that completed or failed",
	}, []string{"status"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
