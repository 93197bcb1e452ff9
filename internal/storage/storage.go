// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage abstracts object storage for background images and
// rendered certificates. Two implementations exist: an S3-compatible
// client for production and a local filesystem store for development.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// Store is the object storage interface used by the service and seed layers.
type Store interface {
	Write(ctx context.Context, key, contentType string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// Bucket returns the logical bucket name recorded alongside file keys.
	Bucket() string
}
