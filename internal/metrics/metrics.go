// Package metrics holds the process-wide Prometheus collectors for document
// lifecycle events. HTTP request metrics live in the middleware package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "documents_uploaded_total",
		Help: "Total number of documents successfully uploaded.",
	})

	DocumentsCompressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "documents_compressed_total",
		Help: "Total number of uploads stored in compressed form.",
	})

	DocumentsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "documents_purged_total",
		Help: "Total number of soft-deleted documents physically removed.",
	})

	QuotaDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quota_denials_total",
		Help: "Total number of uploads denied for exceeding the lab storage limit.",
	})
)
