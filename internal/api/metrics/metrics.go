// Package metrics defines the custom Prometheus metrics for the photo effects
// API. HTTP request metrics are collected separately by the echoprometheus
// middleware.
//
// All metrics register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "photofx"

// ── Image metrics ─────────────────────────────────────────────────────────────

// ImagesProcessedTotal counts images delivered to users.
// Label:
//   - effect: the applied effect id (e.g. "acros_bw")
var ImagesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_processed_total",
		Help:      "Total number of images successfully processed, by effect.",
	},
	[]string{"effect"},
)

// ImageProcessingDuration measures the model round trip plus usage accounting.
// Label:
//   - effect: the applied effect id
var ImageProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_processing_duration_seconds",
		Help:      "Duration of successful image processing calls.",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
	},
	[]string{"effect"},
)

// QuotaRejectionsTotal counts requests refused because the tier limit was reached.
// Label:
//   - tier: "free" or "premium"
var QuotaRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_rejections_total",
		Help:      "Total number of processing requests rejected by the quota policy.",
	},
	[]string{"tier"},
)

// UpstreamErrorsTotal counts failed calls to the image model.
// Label:
//   - reason: "api_config", "quota", "invalid_request", "timeout", "no_image", "canceled" or "unknown"
var UpstreamErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_errors_total",
		Help:      "Total number of image model failures, by reason.",
	},
	[]string{"reason"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts completed OAuth callbacks.
// Label:
//   - result: "success" or the error code sent back to the client (e.g. "oauth_denied")
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of OAuth callbacks, by result.",
	},
	[]string{"result"},
)
