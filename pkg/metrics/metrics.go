package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of catalog events fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of catalog events processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of catalog events failed to process",
		},
		[]string{"topic"},
	)
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|expired|evicted|set|deleted|invalidated
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of slots currently occupied in cache (expired-but-unswept included)",
		},
	)
	CacheWarm = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_warm_total",
			Help: "Cache warming outcomes per key",
		},
		[]string{"result"}, // success|failure
	)
)

var (
	ResponseCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_response_cache_requests_total",
			Help: "HTTP response cache lookups",
		},
		[]string{"result"}, // hit|miss|bypass|skipped
	)
	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Latency of calls to external payment/shipping gateways",
			Buckets: prometheus.ExponentialBuckets(0.05, 1.8, 10),
		},
		[]string{"gateway", "op", "status"},
	)
	PaymentVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment signature verifications by outcome",
		},
		[]string{"result"}, // authentic|rejected
	)
)

// MustRegister — регистрирует метрики в глобальном реестре (повторный вызов безопасен).
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed,
			CacheOps, CacheSize, CacheWarm,
			ResponseCacheRequests, GatewayRequestDuration, PaymentVerifications,
		)
	})
}
