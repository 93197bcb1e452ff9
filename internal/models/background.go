// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me> / Vlah Software House SRL

package models

import "time"

// Background is an uploaded certificate background image. The bytes live in
// object storage; width and height are recorded at upload time so templates
// can be validated and rendered without re-decoding the image.
type Background struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Bucket       string    `json:"-"`
	FileKey      string    `json:"file_key"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}
