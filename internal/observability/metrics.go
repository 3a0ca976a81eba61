package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onchat_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "onchat_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ChannelsCreatedTotal counts channels created on the ledger.
	ChannelsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onchat_channels_created_total",
		Help: "Total number of channels created",
	})

	// MessagesSentTotal counts messages appended across all channels.
	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onchat_messages_sent_total",
		Help: "Total number of messages sent",
	})

	// FeesCollectedWei accumulates collected fees in wei by share.
	FeesCollectedWei = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onchat_fees_collected_wei_total",
		Help: "Total fees collected in wei by share (owner or treasury)",
	}, []string{"share"})

	// PayoutsTotal counts value transfers out of the ledger by kind.
	PayoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onchat_payouts_total",
		Help: "Total number of payouts by kind",
	}, []string{"kind"})

	// EventsEmittedTotal counts ledger events appended to the event log.
	EventsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onchat_events_emitted_total",
		Help: "Total ledger events emitted by type",
	}, []string{"type"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "onchat_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onchat_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onchat_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// LedgerMetrics records domain counters for ledger writes.
type LedgerMetrics struct{}

// NewLedgerMetrics returns a new LedgerMetrics instance.
func NewLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{}
}

// RecordChannelCreated increments the channel creation counter.
func (*LedgerMetrics) RecordChannelCreated() {
	ChannelsCreatedTotal.Inc()
}

// RecordMessageSent increments the message counter.
func (*LedgerMetrics) RecordMessageSent() {
	MessagesSentTotal.Inc()
}

// RecordFeeCollected adds the collected amounts to the fee counters.
// Amounts are reported as float64 wei; precision loss above 2^53 wei is
// acceptable for monitoring purposes.
func (*LedgerMetrics) RecordFeeCollected(ownerWei, treasuryWei float64) {
	FeesCollectedWei.WithLabelValues("owner").Add(ownerWei)
	FeesCollectedWei.WithLabelValues("treasury").Add(treasuryWei)
}

// RecordPayout increments the payout counter for the kind.
func (*LedgerMetrics) RecordPayout(kind string) {
	PayoutsTotal.WithLabelValues(kind).Inc()
}

// RecordEvent increments the event counter for the event type.
func (*LedgerMetrics) RecordEvent(eventType string) {
	EventsEmittedTotal.WithLabelValues(eventType).Inc()
}

// RecordWebSocketEvent increments the WebSocket events counter for the event type.
func RecordWebSocketEvent(eventType string) {
	WebSocketEventsTotal.WithLabelValues(eventType).Inc()
}
