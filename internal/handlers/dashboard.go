// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"certdesk/internal/cache"
	"certdesk/internal/store"
)

// Dashboard serves aggregate issuance statistics, cached briefly in Valkey
// because the query scans the whole ledger.
type Dashboard struct {
	templates *store.TemplateStore
	certs     *store.CertificateStore
	stats     *cache.StatsCache
}

// NewDashboard creates the dashboard handler. stats may be nil when Valkey
// is not configured; every request then recomputes.
func NewDashboard(templates *store.TemplateStore, certs *store.CertificateStore, stats *cache.StatsCache) *Dashboard {
	return &Dashboard{templates: templates, certs: certs, stats: stats}
}

// statsResponse is the GET /api/dashboard/stats payload.
type statsResponse struct {
	ActiveTemplates   int            `json:"active_templates"`
	TotalCertificates int            `json:"total_certificates"`
	ByStatus          map[string]int `json:"by_status"`
	TotalDownloads    int            `json:"total_downloads"`
}

// Stats returns ledger-wide counters.
func (h *Dashboard) Stats(w http.ResponseWriter, r *http.Request) {
	if h.stats != nil {
		if payload, ok := h.stats.Get(r.Context()); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(payload)
			return
		}
	}

	templates, err := h.templates.Count("")
	if err != nil {
		slog.Error("count templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "computing stats failed")
		return
	}
	byStatus, err := h.certs.CountByStatus()
	if err != nil {
		slog.Error("count by status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "computing stats failed")
		return
	}
	downloads, err := h.certs.TotalDownloads()
	if err != nil {
		slog.Error("total downloads failed", "error", err)
		writeError(w, http.StatusInternalServerError, "computing stats failed")
		return
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	resp := statsResponse{
		ActiveTemplates:   templates,
		TotalCertificates: total,
		ByStatus:          byStatus,
		TotalDownloads:    downloads,
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("encode stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "computing stats failed")
		return
	}
	if h.stats != nil {
		h.stats.Set(r.Context(), payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}
