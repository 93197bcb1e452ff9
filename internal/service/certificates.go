// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"certdesk/internal/metrics"
	"certdesk/internal/models"
	"certdesk/internal/pdf"
	"certdesk/internal/serial"
	"certdesk/internal/store"
)

// TemplateStore is the template persistence surface the service needs.
type TemplateStore interface {
	FindActiveByID(id string) (*models.Template, error)
	IncrementUsage(id string) error
}

// CertificateStore is the ledger persistence surface the service needs.
type CertificateStore interface {
	Create(c *models.IssuedCertificate) (*models.IssuedCertificate, error)
	FindByID(id string) (*models.IssuedCertificate, error)
	RecordDownload(id string) (*models.IssuedCertificate, error)
	List(f store.ListFilter) ([]models.IssuedCertificate, error)
	Count(f store.ListFilter) (int, error)
}

// BackgroundStore resolves a template's background metadata.
type BackgroundStore interface {
	FindByID(id string) (*models.Background, error)
}

// FileStore is the object storage surface the service needs.
type FileStore interface {
	Write(ctx context.Context, key, contentType string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Bucket() string
}

// IssueRequest carries everything needed to issue one certificate.
type IssueRequest struct {
	TemplateID     string
	RecipientName  string
	RecipientEmail string
	CustomData     map[string]string
	ExpiryDate     *time.Time
	IssuedBy       string
}

// DownloadResult pairs the ledger row with the PDF bytes to serve.
type DownloadResult struct {
	Certificate *models.IssuedCertificate
	Data        []byte
}

// Certificates issues and serves certificates. The PDF is written to
// storage before the ledger row is inserted; a file orphaned by a failed
// insert is logged, not cleaned up.
type Certificates struct {
	templates   TemplateStore
	certs       CertificateStore
	backgrounds BackgroundStore
	files       FileStore

	// now is swappable for tests.
	now func() time.Time
}

// NewCertificates wires the issuance service.
func NewCertificates(templates TemplateStore, certs CertificateStore, backgrounds BackgroundStore, files FileStore) *Certificates {
	return &Certificates{
		templates:   templates,
		certs:       certs,
		backgrounds: backgrounds,
		files:       files,
		now:         time.Now,
	}
}

// Issue renders a certificate from the template, stores the PDF, and
// records it in the ledger. On a serial collision it regenerates the
// serial and retries once; the PDF is re-rendered because the serial may
// be stamped on the page.
func (s *Certificates) Issue(ctx context.Context, req IssueRequest) (*models.IssuedCertificate, error) {
	tpl, err := s.templates.FindActiveByID(req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("lookup template: %w", err)
	}
	if tpl == nil {
		return nil, ErrTemplateNotFound
	}

	bg, err := s.backgrounds.FindByID(tpl.BackgroundID)
	if err != nil {
		return nil, fmt.Errorf("lookup background: %w", err)
	}
	if bg == nil {
		return nil, &pdf.RenderError{Reason: "background", Err: fmt.Errorf("background %s missing for template %s", tpl.BackgroundID, tpl.ID)}
	}

	bgData, err := s.files.Read(ctx, bg.FileKey)
	if err != nil {
		return nil, &pdf.RenderError{Reason: "background", Err: err}
	}

	issuedAt := s.now().UTC()
	cert, err := s.renderAndRecord(ctx, tpl, bgData, req, issuedAt, serial.New(issuedAt))
	if errors.Is(err, store.ErrDuplicateSerial) {
		// One retry with a fresh serial covers same-millisecond collisions.
		slog.Warn("serial collision, retrying", "template_id", tpl.ID)
		cert, err = s.renderAndRecord(ctx, tpl, bgData, req, issuedAt, serial.New(issuedAt))
	}
	if err != nil {
		return nil, err
	}

	// The counter is best effort; a failed bump never fails the issuance.
	if err := s.templates.IncrementUsage(tpl.ID); err != nil {
		slog.Error("increment template usage", "template_id", tpl.ID, "error", err)
	}

	metrics.CertificatesIssued.Inc()
	slog.Info("certificate issued",
		"certificate_id", cert.ID,
		"template_id", tpl.ID,
		"serial", cert.SerialNumber,
		"recipient", cert.RecipientEmail,
	)
	return cert, nil
}

func (s *Certificates) renderAndRecord(ctx context.Context, tpl *models.Template, bgData []byte, req IssueRequest, issuedAt time.Time, serialNumber string) (*models.IssuedCertificate, error) {
	start := time.Now()
	doc, err := pdf.Render(tpl, bgData, pdf.RecipientData{
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		SerialNumber:   serialNumber,
		IssueDate:      issuedAt,
		CustomData:     req.CustomData,
	})
	if err != nil {
		return nil, err
	}
	metrics.RenderDuration.Observe(time.Since(start).Seconds())

	key := "certificates/" + doc.FileName
	if err := s.files.Write(ctx, key, "application/pdf", doc.Bytes); err != nil {
		return nil, fmt.Errorf("store certificate pdf: %w", err)
	}

	cert, err := s.certs.Create(&models.IssuedCertificate{
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		TemplateID:     tpl.ID,
		IssueDate:      issuedAt,
		SerialNumber:   serialNumber,
		Bucket:         s.files.Bucket(),
		FileKey:        key,
		FileName:       doc.FileName,
		CustomData:     req.CustomData,
		IssuedBy:       req.IssuedBy,
		ExpiryDate:     req.ExpiryDate,
	})
	if err != nil {
		if !errors.Is(err, store.ErrDuplicateSerial) {
			// The PDF stays behind in storage; flag it for manual cleanup.
			slog.Error("ledger insert failed, orphaned file in storage", "key", key, "error", err)
		}
		return nil, err
	}
	return cert, nil
}

// Download fetches the PDF for a ledger row and records the download.
// A missing ledger row or missing file both map to ErrCertificateNotFound.
func (s *Certificates) Download(ctx context.Context, id string) (*DownloadResult, error) {
	cert, err := s.certs.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("lookup certificate: %w", err)
	}
	if cert == nil {
		return nil, ErrCertificateNotFound
	}

	data, err := s.files.Read(ctx, cert.FileKey)
	if err != nil {
		slog.Error("certificate file missing from storage", "certificate_id", id, "key", cert.FileKey, "error", err)
		return nil, ErrCertificateNotFound
	}

	updated, err := s.certs.RecordDownload(id)
	if err != nil {
		return nil, fmt.Errorf("record download: %w", err)
	}
	if updated != nil {
		cert = updated
	}

	metrics.CertificatesDownloaded.Inc()
	return &DownloadResult{Certificate: cert, Data: data}, nil
}

// List returns ledger rows and the total count for the filter.
func (s *Certificates) List(f store.ListFilter) ([]models.IssuedCertificate, int, error) {
	certs, err := s.certs.List(f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.certs.Count(f)
	if err != nil {
		return nil, 0, err
	}
	return certs, total, nil
}
