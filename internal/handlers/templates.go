// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certdesk/internal/middleware"
	"certdesk/internal/models"
	"certdesk/internal/store"
)

// Templates groups the template CRUD handlers.
type Templates struct {
	templates   *store.TemplateStore
	backgrounds *store.BackgroundStore
}

// NewTemplates creates the template handler group.
func NewTemplates(templates *store.TemplateStore, backgrounds *store.BackgroundStore) *Templates {
	return &Templates{templates: templates, backgrounds: backgrounds}
}

// templateRequest is the create/update body.
type templateRequest struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Fields       []models.Field `json:"fields"`
	BackgroundID string         `json:"background_id"`
}

// decodeTemplate parses and validates a template body. Returns nil after
// writing the error response if anything is wrong.
func (h *Templates) decodeTemplate(w http.ResponseWriter, r *http.Request) *models.Template {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil
	}

	req.Title = strings.TrimSpace(req.Title)
	if msg := validateTemplateRequest(req.Title, req.Description); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return nil
	}

	tpl := &models.Template{
		Title:        req.Title,
		Description:  req.Description,
		Fields:       req.Fields,
		BackgroundID: req.BackgroundID,
	}
	for i := range tpl.Fields {
		tpl.Fields[i].Normalize()
	}
	if errs := tpl.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":        "template validation failed",
			"field_errors": errs,
		})
		return nil
	}

	if _, err := uuid.Parse(tpl.BackgroundID); err != nil {
		writeError(w, http.StatusBadRequest, "background_id is not a valid UUID")
		return nil
	}
	bg, err := h.backgrounds.FindByID(tpl.BackgroundID)
	if err != nil {
		slog.Error("lookup background failed", "error", err)
		writeError(w, http.StatusInternalServerError, "background lookup failed")
		return nil
	}
	if bg == nil {
		writeError(w, http.StatusBadRequest, "background does not exist")
		return nil
	}

	return tpl
}

// Create stores a new template.
func (h *Templates) Create(w http.ResponseWriter, r *http.Request) {
	tpl := h.decodeTemplate(w, r)
	if tpl == nil {
		return
	}
	tpl.CreatedBy = middleware.ActorFrom(r.Context())

	created, err := h.templates.Create(tpl)
	if err != nil {
		slog.Error("create template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "creating template failed")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List returns active templates with optional search and pagination.
func (h *Templates) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	limit := queryInt(q.Get("limit"), 50)
	offset := queryInt(q.Get("offset"), 0)

	templates, err := h.templates.List(search, limit, offset)
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing templates failed")
		return
	}
	total, err := h.templates.Count(search)
	if err != nil {
		slog.Error("count templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing templates failed")
		return
	}
	if templates == nil {
		templates = []models.Template{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"templates": templates,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// Get returns a single template by ID, including soft-deleted ones so the
// ledger stays explorable.
func (h *Templates) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	tpl, err := h.templates.FindByID(id)
	if err != nil {
		slog.Error("find template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "template lookup failed")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// Update replaces a template's editable attributes.
func (h *Templates) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	tpl := h.decodeTemplate(w, r)
	if tpl == nil {
		return
	}
	tpl.ID = id

	updated, err := h.templates.Update(tpl)
	if err != nil {
		slog.Error("update template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "updating template failed")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete soft-deletes a template. Certificates already issued from it keep
// working; the template just stops appearing in listings and issuance.
func (h *Templates) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	ok, err := h.templates.SoftDelete(id)
	if err != nil {
		slog.Error("delete template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "deleting template failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
