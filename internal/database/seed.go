package database

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image"
	"image/png"
	"log/slog"
)

// seedWidth and seedHeight are the dimensions of the generated sample
// background image.
const (
	seedWidth  = 800
	seedHeight = 600
)

// FileWriter is the slice of the storage client the seeder needs.
type FileWriter interface {
	Write(ctx context.Context, key, contentType string, data []byte) error
	Bucket() string
}

// Seed populates the database with initial development data: a plain white
// sample background and a template positioned for it, so a fresh install
// can issue a certificate immediately. It is a no-op if any template exists.
func Seed(db *sql.DB, files FileWriter) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&count); err != nil {
		return fmt.Errorf("seed check templates: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Generate and store the sample background image.
	data, err := blankPNG(seedWidth, seedHeight)
	if err != nil {
		return fmt.Errorf("seed generate background: %w", err)
	}

	const key = "backgrounds/sample.png"
	if err := files.Write(context.Background(), key, "image/png", data); err != nil {
		return fmt.Errorf("seed store background: %w", err)
	}

	var backgroundID string
	err = db.QueryRow(`
		INSERT INTO backgrounds (filename, original_name, content_type, size_bytes,
			width, height, bucket, file_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, "sample.png", "sample.png", "image/png", len(data),
		seedWidth, seedHeight, files.Bucket(), key, "seed").Scan(&backgroundID)
	if err != nil {
		return fmt.Errorf("seed insert background: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO templates (title, description, fields, background_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
	`, "Sample Certificate", "Development sample template.",
		`[{"name":"recipient_name","x":200,"y":250,"font_size":28,"color":"#1a1a1a","font_family":"helvetica","font_weight":"bold","text_align":"left"},
		  {"name":"issue_date","x":200,"y":320,"font_size":14,"color":"#444444","font_family":"helvetica","font_weight":"normal","text_align":"left"},
		  {"name":"serial_number","x":200,"y":520,"font_size":10,"color":"#888888","font_family":"courier","font_weight":"normal","text_align":"left"}]`,
		backgroundID, "seed")
	if err != nil {
		return fmt.Errorf("seed insert template: %w", err)
	}

	slog.Info("database seeded with sample background and template")
	return nil
}

// blankPNG encodes a solid white PNG of the given dimensions.
func blankPNG(width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
