// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "media_service"

var (
	// UploadURLsIssuedTotal tracks issued presigned upload URLs.
	// Labels:
	//   - kind: upload, avatar
	UploadURLsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_urls_issued_total",
			Help:      "Total number of presigned upload URLs issued",
		},
		[]string{"kind"},
	)

	// SegmentProcessTotal tracks segment processing outcomes.
	// Labels:
	//   - strategy: reencode, copy, none (pipeline never reached a decision)
	//   - outcome: processed, fallback
	SegmentProcessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_process_total",
			Help:      "Total number of segment processing requests by outcome",
		},
		[]string{"strategy", "outcome"},
	)

	// SegmentProcessDuration observes end-to-end processing time,
	// including download, transcode and upload.
	SegmentProcessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "segment_process_duration_seconds",
			Help:      "Duration of segment processing requests",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	// MediaDeletesTotal tracks delete requests.
	// Labels:
	//   - status: success, forbidden, error
	MediaDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_deletes_total",
			Help:      "Total number of media delete requests",
		},
		[]string{"status"},
	)
)

// Upload URL kind constants.
const (
	KindUpload = "upload"
	KindAvatar = "avatar"
)

// Processing outcome constants.
const (
	OutcomeProcessed = "processed"
	OutcomeFallback  = "fallback"
)

// Delete status constants.
const (
	DeleteSuccess   = "success"
	DeleteForbidden = "forbidden"
	DeleteError     = "error"
)
