// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certdesk/internal/middleware"
	"certdesk/internal/models"
	"certdesk/internal/storage"
	"certdesk/internal/store"
)

// maxBackgroundSize caps background uploads at 10 MB.
const maxBackgroundSize = 10 << 20

// Backgrounds groups the background image upload and management handlers.
type Backgrounds struct {
	backgrounds *store.BackgroundStore
	files       storage.Store
}

// NewBackgrounds creates the background handler group.
func NewBackgrounds(backgrounds *store.BackgroundStore, files storage.Store) *Backgrounds {
	return &Backgrounds{backgrounds: backgrounds, files: files}
}

// Upload accepts a multipart background image (field "file"), probes its
// dimensions, stores the bytes, and records the metadata.
func (h *Backgrounds) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBackgroundSize)
	if err := r.ParseMultipartForm(maxBackgroundSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large (max 10 MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed")
		return
	}

	// Sniff the real content type; the client's header is not trusted.
	contentType := http.DetectContentType(data)
	if contentType != "image/png" && contentType != "image/jpeg" {
		writeError(w, http.StatusBadRequest, "background must be a PNG or JPEG image")
		return
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		writeError(w, http.StatusBadRequest, "image could not be decoded")
		return
	}
	if cfg.Width < 1 || cfg.Height < 1 {
		writeError(w, http.StatusBadRequest, "image has no pixels")
		return
	}

	ext := ".png"
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}
	filename := uuid.NewString() + ext
	key := "backgrounds/" + filename

	if err := h.files.Write(r.Context(), key, contentType, data); err != nil {
		slog.Error("store background failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "storing background failed")
		return
	}

	bg, err := h.backgrounds.Create(&models.Background{
		Filename:     filename,
		OriginalName: sanitizeFilename(header.Filename),
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Width:        cfg.Width,
		Height:       cfg.Height,
		Bucket:       h.files.Bucket(),
		FileKey:      key,
		UploadedBy:   middleware.ActorFrom(r.Context()),
	})
	if err != nil {
		slog.Error("record background failed, orphaned file in storage", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "recording background failed")
		return
	}

	writeJSON(w, http.StatusCreated, bg)
}

// List returns all uploaded backgrounds.
func (h *Backgrounds) List(w http.ResponseWriter, r *http.Request) {
	backgrounds, err := h.backgrounds.List()
	if err != nil {
		slog.Error("list backgrounds failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing backgrounds failed")
		return
	}
	if backgrounds == nil {
		backgrounds = []models.Background{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"backgrounds": backgrounds})
}

// Get streams the background image bytes, for template preview.
func (h *Backgrounds) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid background id")
		return
	}

	bg, err := h.backgrounds.FindByID(id)
	if err != nil {
		slog.Error("find background failed", "error", err)
		writeError(w, http.StatusInternalServerError, "background lookup failed")
		return
	}
	if bg == nil {
		writeError(w, http.StatusNotFound, "background not found")
		return
	}

	data, err := h.files.Read(r.Context(), bg.FileKey)
	if err != nil {
		slog.Error("read background failed", "key", bg.FileKey, "error", err)
		writeError(w, http.StatusNotFound, "background file missing")
		return
	}

	w.Header().Set("Content-Type", bg.ContentType)
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.Write(data)
}

// Delete removes a background that no template references, along with its
// stored file.
func (h *Backgrounds) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid background id")
		return
	}

	bg, err := h.backgrounds.FindByID(id)
	if err != nil {
		slog.Error("find background failed", "error", err)
		writeError(w, http.StatusInternalServerError, "background lookup failed")
		return
	}
	if bg == nil {
		writeError(w, http.StatusNotFound, "background not found")
		return
	}

	ok, err := h.backgrounds.Delete(id)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "background not found")
		return
	}

	if err := h.files.Delete(r.Context(), bg.FileKey); err != nil {
		// The row is gone; log the stranded file and carry on.
		slog.Error("delete background file failed", "key", bg.FileKey, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// sanitizeFilename strips any path components from a client filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
