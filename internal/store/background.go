// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"certdesk/internal/models"
)

// BackgroundStore handles background image metadata.
type BackgroundStore struct {
	db *sql.DB
}

// NewBackgroundStore creates a new BackgroundStore with the given database connection.
func NewBackgroundStore(db *sql.DB) *BackgroundStore {
	return &BackgroundStore{db: db}
}

const backgroundColumns = `id, filename, original_name, content_type, size_bytes,
	width, height, bucket, file_key, uploaded_by, created_at`

func scanBackground(row interface{ Scan(...any) error }) (*models.Background, error) {
	b := &models.Background{}
	err := row.Scan(
		&b.ID, &b.Filename, &b.OriginalName, &b.ContentType, &b.SizeBytes,
		&b.Width, &b.Height, &b.Bucket, &b.FileKey, &b.UploadedBy, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns all backgrounds newest first.
func (s *BackgroundStore) List() ([]models.Background, error) {
	rows, err := s.db.Query(`
		SELECT ` + backgroundColumns + `
		FROM backgrounds
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list backgrounds: %w", err)
	}
	defer rows.Close()

	var backgrounds []models.Background
	for rows.Next() {
		b, err := scanBackground(rows)
		if err != nil {
			return nil, fmt.Errorf("scan background: %w", err)
		}
		backgrounds = append(backgrounds, *b)
	}
	return backgrounds, rows.Err()
}

// FindByID retrieves a background by its UUID. Returns nil if not found.
func (s *BackgroundStore) FindByID(id string) (*models.Background, error) {
	b, err := scanBackground(s.db.QueryRow(`
		SELECT `+backgroundColumns+`
		FROM backgrounds WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find background by id: %w", err)
	}
	return b, nil
}

// Create inserts background metadata and returns the stored row.
func (s *BackgroundStore) Create(b *models.Background) (*models.Background, error) {
	result, err := scanBackground(s.db.QueryRow(`
		INSERT INTO backgrounds (filename, original_name, content_type, size_bytes,
			width, height, bucket, file_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+backgroundColumns+`
	`, b.Filename, b.OriginalName, b.ContentType, b.SizeBytes,
		b.Width, b.Height, b.Bucket, b.FileKey, b.UploadedBy))
	if err != nil {
		return nil, fmt.Errorf("create background: %w", err)
	}
	return result, nil
}

// Delete removes a background that no template references. Returns false if
// the background was not found.
func (s *BackgroundStore) Delete(id string) (bool, error) {
	var inUse int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM templates WHERE background_id = $1
	`, id).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check background usage: %w", err)
	}
	if inUse > 0 {
		return false, fmt.Errorf("background is referenced by %d template(s)", inUse)
	}

	result, err := s.db.Exec(`DELETE FROM backgrounds WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete background: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
