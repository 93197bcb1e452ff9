// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me> / Vlah Software House SRL

package models

import "time"

// CertificateStatus tracks the lifecycle of an issued certificate.
type CertificateStatus string

const (
	StatusIssued     CertificateStatus = "issued"
	StatusDownloaded CertificateStatus = "downloaded"
	StatusExpired    CertificateStatus = "expired"
)

// IssuedCertificate is one row of the issuance ledger. The rendered PDF
// lives in object storage at Bucket/FileKey; this record carries the
// metadata needed to list, audit, and serve it.
type IssuedCertificate struct {
	ID             string            `json:"id"`
	RecipientName  string            `json:"recipient_name"`
	RecipientEmail string            `json:"recipient_email"`
	TemplateID     string            `json:"template_id"`
	IssueDate      time.Time         `json:"issue_date"`
	SerialNumber   string            `json:"serial_number"`
	Bucket         string            `json:"-"`
	FileKey        string            `json:"-"`
	FileName       string            `json:"file_name"`
	CustomData     map[string]string `json:"custom_data,omitempty"`
	IssuedBy       string            `json:"issued_by"`
	Status         CertificateStatus `json:"status"`
	DownloadCount  int               `json:"download_count"`
	LastDownloaded *time.Time        `json:"last_downloaded,omitempty"`
	ExpiryDate     *time.Time        `json:"expiry_date,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
