// Package metrics exposes Prometheus metrics for lifecycle outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProvisionTotal counts completed provisioning attempts by result.
	ProvisionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blockscout_automation",
			Subsystem: "provisioning",
			Name:      "provision_total",
			Help:      "Total number of provisioning attempts by kind and result",
		},
		[]string{"kind", "result"},
	)

	// ProvisionDuration observes end-to-end provisioning time.
	ProvisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "blockscout_automation",
			Subsystem: "provisioning",
			Name:      "provision_duration_seconds",
			Help:      "Duration of a full provisioning run in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1h
		},
		[]string{"kind"},
	)

	// CertificateTotal counts certificate issuance outcomes.
	CertificateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blockscout_automation",
			Subsystem: "certificates",
			Name:      "issuance_total",
			Help:      "Total number of certificate issuance runs by result",
		},
		[]string{"result"},
	)

	// CleanupTotal counts server cleanup runs by result.
	CleanupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blockscout_automation",
			Subsystem: "cleanup",
			Name:      "cleanup_total",
			Help:      "Total number of server cleanup runs by result",
		},
		[]string{"result"},
	)
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultTimeout = "timeout"
)
