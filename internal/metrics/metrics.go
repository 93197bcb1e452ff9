// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CertificatesIssued counts successful issuances.
	CertificatesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "certdesk_certificates_issued_total",
		Help: "Total number of certificates issued.",
	})

	// CertificatesDownloaded counts served certificate downloads.
	CertificatesDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "certdesk_certificates_downloaded_total",
		Help: "Total number of certificate downloads served.",
	})

	// RenderDuration tracks PDF rendering latency.
	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "certdesk_render_duration_seconds",
		Help:    "Time spent rendering certificate PDFs.",
		Buckets: prometheus.DefBuckets,
	})

	// HTTPRequests counts requests by method, route pattern, and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certdesk_http_requests_total",
		Help: "HTTP requests by method, route, and status code.",
	}, []string{"method", "route", "status"})
)
