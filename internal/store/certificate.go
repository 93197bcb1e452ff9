// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"certdesk/internal/models"
)

// ErrDuplicateSerial is returned by Create when the serial number collides
// with an existing certificate. The caller regenerates and retries.
var ErrDuplicateSerial = errors.New("duplicate serial number")

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// CertificateStore handles the issuance ledger.
type CertificateStore struct {
	db *sql.DB
}

// NewCertificateStore creates a new CertificateStore with the given database connection.
func NewCertificateStore(db *sql.DB) *CertificateStore {
	return &CertificateStore{db: db}
}

const certificateColumns = `id, recipient_name, recipient_email, template_id,
	issue_date, serial_number, bucket, file_key, file_name, custom_data,
	issued_by, status, download_count, last_downloaded, expiry_date, created_at`

func scanCertificate(row interface{ Scan(...any) error }) (*models.IssuedCertificate, error) {
	c := &models.IssuedCertificate{}
	var custom []byte
	err := row.Scan(
		&c.ID, &c.RecipientName, &c.RecipientEmail, &c.TemplateID,
		&c.IssueDate, &c.SerialNumber, &c.Bucket, &c.FileKey, &c.FileName, &custom,
		&c.IssuedBy, &c.Status, &c.DownloadCount, &c.LastDownloaded, &c.ExpiryDate, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(custom, &c.CustomData); err != nil {
		return nil, fmt.Errorf("decode custom data: %w", err)
	}
	return c, nil
}

// Create inserts a ledger row for a freshly rendered certificate. A serial
// collision maps to ErrDuplicateSerial so the caller can retry with a new
// serial; the UNIQUE index is the source of truth for uniqueness.
func (s *CertificateStore) Create(c *models.IssuedCertificate) (*models.IssuedCertificate, error) {
	custom := []byte("{}")
	if c.CustomData != nil {
		var err error
		custom, err = json.Marshal(c.CustomData)
		if err != nil {
			return nil, fmt.Errorf("encode custom data: %w", err)
		}
	}

	result, err := scanCertificate(s.db.QueryRow(`
		INSERT INTO issued_certificates (recipient_name, recipient_email, template_id,
			issue_date, serial_number, bucket, file_key, file_name, custom_data,
			issued_by, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+certificateColumns+`
	`, c.RecipientName, c.RecipientEmail, c.TemplateID,
		c.IssueDate, c.SerialNumber, c.Bucket, c.FileKey, c.FileName, custom,
		c.IssuedBy, c.ExpiryDate))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateSerial
		}
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return result, nil
}

// FindByID retrieves a certificate by its UUID. Returns nil if not found.
func (s *CertificateStore) FindByID(id string) (*models.IssuedCertificate, error) {
	c, err := scanCertificate(s.db.QueryRow(`
		SELECT `+certificateColumns+`
		FROM issued_certificates WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find certificate by id: %w", err)
	}
	return c, nil
}

// FindBySerial retrieves a certificate by its serial number. Returns nil if
// not found.
func (s *CertificateStore) FindBySerial(serial string) (*models.IssuedCertificate, error) {
	c, err := scanCertificate(s.db.QueryRow(`
		SELECT `+certificateColumns+`
		FROM issued_certificates WHERE serial_number = $1
	`, serial))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find certificate by serial: %w", err)
	}
	return c, nil
}

// ListFilter narrows the issuance ledger listing. Zero values mean no
// filter. Search matches recipient name, email, or serial number.
type ListFilter struct {
	TemplateID     string
	RecipientEmail string
	Status         string
	Search         string
	Limit          int
	Offset         int
}

// List returns ledger rows newest first, applying the filter.
func (s *CertificateStore) List(f ListFilter) ([]models.IssuedCertificate, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	rows, err := s.db.Query(`
		SELECT `+certificateColumns+`
		FROM issued_certificates
		WHERE ($1 = '' OR template_id::text = $1)
		  AND ($2 = '' OR recipient_email = $2)
		  AND ($3 = '' OR status = $3)
		  AND ($4 = '' OR recipient_name ILIKE '%' || $4 || '%'
		       OR recipient_email ILIKE '%' || $4 || '%'
		       OR serial_number ILIKE '%' || $4 || '%')
		ORDER BY issue_date DESC
		LIMIT $5 OFFSET $6
	`, f.TemplateID, f.RecipientEmail, f.Status, f.Search, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var certs []models.IssuedCertificate
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		certs = append(certs, *c)
	}
	return certs, rows.Err()
}

// Count returns the number of ledger rows matching the filter.
func (s *CertificateStore) Count(f ListFilter) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM issued_certificates
		WHERE ($1 = '' OR template_id::text = $1)
		  AND ($2 = '' OR recipient_email = $2)
		  AND ($3 = '' OR status = $3)
		  AND ($4 = '' OR recipient_name ILIKE '%' || $4 || '%'
		       OR recipient_email ILIKE '%' || $4 || '%'
		       OR serial_number ILIKE '%' || $4 || '%')
	`, f.TemplateID, f.RecipientEmail, f.Status, f.Search).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count certificates: %w", err)
	}
	return count, nil
}

// RecordDownload bumps the download counter, stamps the download time, and
// moves an issued certificate to downloaded. The status transition is
// one-way: downloaded and expired rows keep their status. A single UPDATE
// keeps concurrent downloads consistent. Returns the updated row, or nil
// if the certificate does not exist.
func (s *CertificateStore) RecordDownload(id string) (*models.IssuedCertificate, error) {
	c, err := scanCertificate(s.db.QueryRow(`
		UPDATE issued_certificates SET
			download_count = download_count + 1,
			last_downloaded = NOW(),
			status = CASE WHEN status = 'issued' THEN 'downloaded' ELSE status END
		WHERE id = $1
		RETURNING `+certificateColumns+`
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record download: %w", err)
	}
	return c, nil
}

// ExpireOverdue marks issued or downloaded certificates whose expiry date
// has passed as expired. Returns the number of rows transitioned.
func (s *CertificateStore) ExpireOverdue() (int64, error) {
	result, err := s.db.Exec(`
		UPDATE issued_certificates SET status = 'expired'
		WHERE expiry_date IS NOT NULL AND expiry_date < NOW() AND status != 'expired'
	`)
	if err != nil {
		return 0, fmt.Errorf("expire certificates: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// CountByStatus returns ledger totals grouped by status.
func (s *CertificateStore) CountByStatus() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT status, COUNT(*) FROM issued_certificates GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// TotalDownloads returns the sum of download counters across the ledger.
func (s *CertificateStore) TotalDownloads() (int, error) {
	var total int
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(download_count), 0) FROM issued_certificates
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total downloads: %w", err)
	}
	return total, nil
}
