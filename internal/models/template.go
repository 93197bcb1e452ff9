// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me> / Vlah Software House SRL

// Package models defines the core data structures shared by the store,
// service, and handler layers.
package models

import (
	"regexp"
	"strings"
	"time"
)

// Font weight values accepted for a template field.
const (
	FontWeightNormal = "normal"
	FontWeightBold   = "bold"
)

// Text alignment values accepted for a template field. Alignment is stored
// with the field and returned to clients; rendering anchors the text's left
// edge at the field position.
const (
	TextAlignLeft   = "left"
	TextAlignCenter = "center"
	TextAlignRight  = "right"
)

// Font size limits in points.
const (
	MinFontSize     = 8
	MaxFontSize     = 72
	DefaultFontSize = 12
)

// DefaultColor is the text color applied when a field omits one.
const DefaultColor = "#000000"

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Field is a single positioned text element on a certificate template.
// Coordinates are in points from the top-left corner of the background
// image, as authored in the template editor; the renderer converts them
// to PDF baseline positions.
type Field struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FontSize   float64 `json:"font_size"`
	Color      string  `json:"color"`
	FontFamily string  `json:"font_family"`
	FontWeight string  `json:"font_weight"`
	TextAlign  string  `json:"text_align"`
}

// Template is a certificate layout: a background image plus positioned
// fields. Templates are soft-deleted by clearing IsActive.
type Template struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Fields       []Field   `json:"fields"`
	BackgroundID string    `json:"background_id"`
	IsActive     bool      `json:"is_active"`
	UsageCount   int       `json:"usage_count"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FieldError describes a validation failure on one template field.
type FieldError struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Normalize fills in defaults for optional field attributes. It is called
// before validation so that omitted values never fail checks.
func (f *Field) Normalize() {
	if f.FontSize == 0 {
		f.FontSize = DefaultFontSize
	}
	if f.Color == "" {
		f.Color = DefaultColor
	}
	if f.FontFamily == "" {
		f.FontFamily = "helvetica"
	}
	if f.FontWeight == "" {
		f.FontWeight = FontWeightNormal
	}
	if f.TextAlign == "" {
		f.TextAlign = TextAlignLeft
	}
}

// Validate checks the template's title and fields, returning one FieldError
// per problem found. An empty slice means the template is valid. Field
// defaults must be applied (Normalize) before calling.
func (t *Template) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, FieldError{Index: -1, Message: "title is required"})
	}
	if t.BackgroundID == "" {
		errs = append(errs, FieldError{Index: -1, Message: "background_id is required"})
	}
	if len(t.Fields) == 0 {
		errs = append(errs, FieldError{Index: -1, Message: "at least one field is required"})
	}

	for i, f := range t.Fields {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, FieldError{Index: i, Name: f.Name, Message: "field name is required"})
		}
		if f.X < 0 {
			errs = append(errs, FieldError{Index: i, Name: f.Name, Message: "x must be >= 0"})
		}
		if f.Y < 0 {
			errs = append(errs, FieldError{Index: i, Name: f.Name, Message: "y must be >= 0"})
		}
		if f.FontSize < MinFontSize || f.FontSize > MaxFontSize {
			errs = append(errs, FieldError{Index: i, Name: f.Name, Message: "font_size must be between 8 and 72"})
		}
		if !hexColorRe.MatchString(f.Color) {
			errs = append(errs, FieldError{Index: i, Name: f.Name, Message: "color must be a hex value like #000 or #1a2b3c"})
		}
		switch f.FontWeight {
		case FontWeightNormal, FontWeightBold:
		default:
			errs = append(errs, FieldError{Index: i, Name: f.Name, Message: "font_weight must be normal or bold"})
		}
		switch f.TextAlign {
		case TextAlignLeft, TextAlignCenter, TextAlignRight:
		default:
			errs = append(errs, FieldError{Index: i, Name: f.Name, Message: "text_align must be left, center, or right"})
		}
	}

	return errs
}
