// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me> / Vlah Software House SRL

// Package pdf renders certificates: a single-page PDF sized to the
// template's background image with positioned text drawn on top.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/jung-kurt/gofpdf"

	"certdesk/internal/models"
)

// RenderError describes a failure while producing a certificate PDF.
// Reason is a short stable identifier ("background", "encode") that the
// service layer uses to classify the failure.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Reason, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// RecipientData carries the values substituted into template fields.
type RecipientData struct {
	RecipientName  string
	RecipientEmail string
	SerialNumber   string
	IssueDate      time.Time
	CustomData     map[string]string
}

// Document is a rendered certificate.
type Document struct {
	Bytes    []byte
	FileName string
}

// dateLayout matches the short date format stamped on certificates,
// e.g. 3/15/2026.
const dateLayout = "1/2/2006"

// Render produces a one-page PDF for the template over the given background
// image bytes (PNG or JPEG). The page is sized in points to the image's
// pixel dimensions so template coordinates map 1:1 onto the page. Rendering
// is deterministic for a fixed RecipientData.
func Render(tpl *models.Template, background []byte, data RecipientData) (*Document, error) {
	cfg, format, err := decodeBackground(background)
	if err != nil {
		return nil, &RenderError{Reason: "background", Err: err}
	}

	w := float64(cfg.Width)
	h := float64(cfg.Height)

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreationDate(data.IssueDate)
	doc.SetModificationDate(data.IssueDate)
	doc.SetCatalogSort(true)
	doc.AddPage()

	opts := gofpdf.ImageOptions{ImageType: format, ReadDpi: false}
	doc.RegisterImageOptionsReader("background", opts, bytes.NewReader(background))
	doc.ImageOptions("background", 0, 0, w, h, false, opts, 0, "")

	for _, f := range tpl.Fields {
		text := resolveFieldText(f, data)
		if text == "" {
			continue
		}

		style := ""
		if f.FontWeight == models.FontWeightBold {
			style = "B"
		}
		doc.SetFont(fontFamily(f.FontFamily), style, f.FontSize)

		r, g, b := parseHexColor(f.Color)
		doc.SetTextColor(r, g, b)

		// Template y is measured from the bottom edge; gofpdf's origin is
		// the top-left, so the baseline lands at h minus the converted y.
		doc.Text(f.X, h-BaselineY(h, f.Y, f.FontSize), text)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, &RenderError{Reason: "encode", Err: err}
	}

	return &Document{
		Bytes:    buf.Bytes(),
		FileName: FileName(data.RecipientName, data.IssueDate),
	}, nil
}

// BaselineY converts a field's bottom-origin y coordinate to the text
// baseline position, still measured from the bottom of the page.
func BaselineY(pageHeight, y, fontSize float64) float64 {
	return pageHeight - y - fontSize
}

// FileName builds the download filename for a certificate, e.g.
// certificate_Jane_Doe_1773392400000.pdf.
func FileName(recipientName string, issuedAt time.Time) string {
	name := strings.ReplaceAll(recipientName, " ", "_")
	return fmt.Sprintf("certificate_%s_%d.pdf", name, issuedAt.UnixMilli())
}

// resolveFieldText maps a field name to its value. Well-known names draw
// from the recipient record, custom names from CustomData, and anything
// else renders the field name itself as literal text.
func resolveFieldText(f models.Field, data RecipientData) string {
	switch strings.ToLower(f.Name) {
	case "recipient_name", "name":
		return data.RecipientName
	case "recipient_email", "email":
		return data.RecipientEmail
	case "issue_date", "date":
		return data.IssueDate.Format(dateLayout)
	case "serial_number", "serial":
		return data.SerialNumber
	}
	if v, ok := data.CustomData[f.Name]; ok {
		return v
	}
	return f.Name
}

// fontFamily maps a template font family to one of the core PDF fonts.
// Unknown families fall back to Helvetica.
func fontFamily(name string) string {
	switch strings.ToLower(name) {
	case "times", "serif":
		return "Times"
	case "courier", "mono", "monospace":
		return "Courier"
	default:
		return "Helvetica"
	}
}

// parseHexColor converts #RGB or #RRGGBB to 8-bit components. Invalid
// input yields black, matching the template default.
func parseHexColor(s string) (r, g, b int) {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3:
		r = hexNibble(s[0]) * 17
		g = hexNibble(s[1]) * 17
		b = hexNibble(s[2]) * 17
	case 6:
		r = hexNibble(s[0])<<4 | hexNibble(s[1])
		g = hexNibble(s[2])<<4 | hexNibble(s[3])
		b = hexNibble(s[4])<<4 | hexNibble(s[5])
	}
	return r, g, b
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

// decodeBackground probes the image header for dimensions and returns the
// gofpdf image type tag. Only PNG and JPEG are supported.
func decodeBackground(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode background image: %w", err)
	}
	switch format {
	case "png":
		return cfg, "PNG", nil
	case "jpeg":
		return cfg, "JPG", nil
	}
	return image.Config{}, "", fmt.Errorf("unsupported background format %q", format)
}
