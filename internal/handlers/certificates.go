// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certdesk/internal/cache"
	"certdesk/internal/middleware"
	"certdesk/internal/models"
	"certdesk/internal/pdf"
	"certdesk/internal/service"
	"certdesk/internal/store"
)

// Issuer is the service surface the certificate handlers need.
type Issuer interface {
	Issue(ctx context.Context, req service.IssueRequest) (*models.IssuedCertificate, error)
	Download(ctx context.Context, id string) (*service.DownloadResult, error)
	List(f store.ListFilter) ([]models.IssuedCertificate, int, error)
}

// Certificates groups the issuance and download handlers.
type Certificates struct {
	issuer Issuer
	stats  *cache.StatsCache
}

// NewCertificates creates the certificate handler group. stats may be nil
// when Valkey is not configured.
func NewCertificates(issuer Issuer, stats *cache.StatsCache) *Certificates {
	return &Certificates{issuer: issuer, stats: stats}
}

// generateRequest is the POST /api/certificates/generate body.
type generateRequest struct {
	TemplateID     string            `json:"template_id"`
	RecipientName  string            `json:"recipient_name"`
	RecipientEmail string            `json:"recipient_email"`
	CustomData     map[string]string `json:"custom_data"`
	ExpiryDate     *time.Time        `json:"expiry_date"`
}

// Generate renders and records a certificate. Responds 201 with the ledger
// row, 400 on bad input, 404 for an unknown template, and 500 when
// rendering or storage fails.
func (h *Certificates) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateIssueRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if _, err := uuid.Parse(req.TemplateID); err != nil {
		writeError(w, http.StatusBadRequest, "template_id is not a valid UUID")
		return
	}
	if req.ExpiryDate != nil && req.ExpiryDate.Before(time.Now()) {
		writeError(w, http.StatusBadRequest, "expiry_date is in the past")
		return
	}

	cert, err := h.issuer.Issue(r.Context(), service.IssueRequest{
		TemplateID:     req.TemplateID,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		CustomData:     req.CustomData,
		ExpiryDate:     req.ExpiryDate,
		IssuedBy:       middleware.ActorFrom(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			writeError(w, http.StatusNotFound, "template not found")
		default:
			var rerr *pdf.RenderError
			if errors.As(err, &rerr) {
				slog.Error("certificate render failed", "reason", rerr.Reason, "error", err)
				writeError(w, http.StatusInternalServerError, "certificate rendering failed")
				return
			}
			slog.Error("certificate issuance failed", "error", err)
			writeError(w, http.StatusInternalServerError, "certificate issuance failed")
		}
		return
	}

	if h.stats != nil {
		h.stats.Invalidate(r.Context())
	}
	writeJSON(w, http.StatusCreated, cert)
}

// Download streams the stored PDF and records the download.
func (h *Certificates) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid certificate id")
		return
	}

	result, err := h.issuer.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			writeError(w, http.StatusNotFound, "certificate not found")
			return
		}
		slog.Error("certificate download failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "certificate download failed")
		return
	}

	if h.stats != nil {
		h.stats.Invalidate(r.Context())
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Certificate.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Write(result.Data)
}

// Issued lists the issuance ledger with optional template_id, email, and
// status filters, a name/email/serial search, and limit/offset pagination.
func (h *Certificates) Issued(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ListFilter{
		TemplateID:     q.Get("template_id"),
		RecipientEmail: q.Get("email"),
		Status:         q.Get("status"),
		Search:         strings.TrimSpace(q.Get("search")),
		Limit:          queryInt(q.Get("limit"), 50),
		Offset:         queryInt(q.Get("offset"), 0),
	}

	if filter.TemplateID != "" {
		if _, err := uuid.Parse(filter.TemplateID); err != nil {
			writeError(w, http.StatusBadRequest, "template_id is not a valid UUID")
			return
		}
	}
	switch filter.Status {
	case "", string(models.StatusIssued), string(models.StatusDownloaded), string(models.StatusExpired):
	default:
		writeError(w, http.StatusBadRequest, "status must be issued, downloaded, or expired")
		return
	}

	certs, total, err := h.issuer.List(filter)
	if err != nil {
		slog.Error("list certificates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing certificates failed")
		return
	}
	if certs == nil {
		certs = []models.IssuedCertificate{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"certificates": certs,
		"total":        total,
		"limit":        filter.Limit,
		"offset":       filter.Offset,
	})
}

// queryInt parses a non-negative integer query parameter with a fallback.
func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
