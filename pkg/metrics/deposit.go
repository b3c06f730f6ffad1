package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of webhook processing end to end
	WebhookDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "deposit_webhook_latency_seconds",
		Help:    "Latency of deposit webhook processing",
		Buckets: prometheus.DefBuckets,
	})

	WebhookReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deposit_webhook_received_total",
		Help: "Signature-valid webhooks received",
	})

	WebhookRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deposit_webhook_rejected_total",
		Help: "Webhooks rejected for a bad signature",
	})

	DepositsCredited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deposit_credited_total",
		Help: "Deposits matched and credited to a wallet",
	})

	DepositsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deposit_created_total",
		Help: "Pending deposits created",
	})
)

func Init() {
	prometheus.MustRegister(
		WebhookDuration,
		WebhookReceived,
		WebhookRejected,
		DepositsCredited,
		DepositsCreated,
	)
}
