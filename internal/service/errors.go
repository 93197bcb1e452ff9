// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service orchestrates certificate issuance: template lookup,
// rendering, file storage, and the issuance ledger.
package service

import "errors"

var (
	// ErrTemplateNotFound means the requested template is absent or
	// soft-deleted.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrCertificateNotFound means the ledger row or its stored PDF is
	// missing.
	ErrCertificateNotFound = errors.New("certificate not found")
)
