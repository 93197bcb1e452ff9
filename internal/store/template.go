// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains the PostgreSQL persistence layer. Each store is a
// thin struct over *sql.DB with explicit scanning and no ORM.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"certdesk/internal/models"
)

// TemplateStore handles all template-related database operations.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `id, title, description, fields, background_id,
	is_active, usage_count, created_by, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*models.Template, error) {
	t := &models.Template{}
	var fields []byte
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &fields, &t.BackgroundID,
		&t.IsActive, &t.UsageCount, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &t.Fields); err != nil {
		return nil, fmt.Errorf("decode template fields: %w", err)
	}
	return t, nil
}

// List returns active templates newest first, optionally filtered by a
// case-insensitive title/description search, with limit/offset pagination.
func (s *TemplateStore) List(search string, limit, offset int) ([]models.Template, error) {
	rows, err := s.db.Query(`
		SELECT `+templateColumns+`
		FROM templates
		WHERE is_active = TRUE
		  AND ($1 = '' OR title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// FindByID retrieves a template by its UUID, active or not. Returns nil if
// not found.
func (s *TemplateStore) FindByID(id string) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRow(`
		SELECT `+templateColumns+`
		FROM templates WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// FindActiveByID retrieves a template only if it has not been soft-deleted.
// Returns nil if absent or inactive.
func (s *TemplateStore) FindActiveByID(id string) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRow(`
		SELECT `+templateColumns+`
		FROM templates WHERE id = $1 AND is_active = TRUE
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active template: %w", err)
	}
	return t, nil
}

// Create inserts a new template and returns the stored row.
func (s *TemplateStore) Create(t *models.Template) (*models.Template, error) {
	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode template fields: %w", err)
	}

	result, err := scanTemplate(s.db.QueryRow(`
		INSERT INTO templates (title, description, fields, background_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+templateColumns+`
	`, t.Title, t.Description, fields, t.BackgroundID, t.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return result, nil
}

// Update replaces a template's editable attributes. Returns the updated row,
// or nil if the template does not exist or is soft-deleted.
func (s *TemplateStore) Update(t *models.Template) (*models.Template, error) {
	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode template fields: %w", err)
	}

	result, err := scanTemplate(s.db.QueryRow(`
		UPDATE templates SET
			title = $1, description = $2, fields = $3, background_id = $4, updated_at = NOW()
		WHERE id = $5 AND is_active = TRUE
		RETURNING `+templateColumns+`
	`, t.Title, t.Description, fields, t.BackgroundID, t.ID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return result, nil
}

// SoftDelete deactivates a template so it can no longer be listed or used
// for issuance. Existing certificates keep their reference. Returns false
// if the template was not found or already inactive.
func (s *TemplateStore) SoftDelete(id string) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE templates SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete template: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// IncrementUsage bumps the template's issuance counter. A single UPDATE
// keeps concurrent increments safe without a transaction.
func (s *TemplateStore) IncrementUsage(id string) error {
	_, err := s.db.Exec(`
		UPDATE templates SET usage_count = usage_count + 1 WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment template usage: %w", err)
	}
	return nil
}

// Count returns the number of active templates matching the search filter.
func (s *TemplateStore) Count(search string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM templates
		WHERE is_active = TRUE
		  AND ($1 = '' OR title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
	`, search).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}
