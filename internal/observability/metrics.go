package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesCreated counts message writes by kind (root or reply).
	MessagesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadloom_messages_created_total",
		Help: "Total number of messages created",
	}, []string{"kind"})

	// CascadeDeletions counts subtree deletions by outcome.
	CascadeDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadloom_cascade_deletions_total",
		Help: "Total number of cascade deletions by outcome",
	}, []string{"outcome"})

	// CascadeSubtreeSize records how many messages each cascade removed.
	CascadeSubtreeSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "threadloom_cascade_subtree_size",
		Help:    "Number of messages removed per cascade deletion",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	// TreeResolveDepth records the depth reached by full tree hydration.
	TreeResolveDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "threadloom_tree_resolve_depth",
		Help:    "Depth of fully hydrated message trees",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	// FeedCacheEvents counts feed cache hits, misses and invalidations.
	FeedCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadloom_feed_cache_events_total",
		Help: "Feed cache events by type",
	}, []string{"event"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadloom_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)
