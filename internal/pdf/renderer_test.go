package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"certdesk/internal/models"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func testTemplate() *models.Template {
	return &models.Template{
		Title:        "Course Completion",
		BackgroundID: "bg",
		Fields: []models.Field{
			{Name: "recipient_name", X: 100, Y: 300, FontSize: 24, Color: "#1a1a1a", FontFamily: "helvetica", FontWeight: "bold", TextAlign: "left"},
			{Name: "issue_date", X: 100, Y: 200, FontSize: 12, Color: "#444", FontFamily: "times", FontWeight: "normal", TextAlign: "left"},
			{Name: "serial_number", X: 100, Y: 50, FontSize: 10, Color: "#888888", FontFamily: "courier", FontWeight: "normal", TextAlign: "left"},
		},
	}
}

func testData() RecipientData {
	return RecipientData{
		RecipientName:  "Jane Doe",
		RecipientEmail: "jane@example.com",
		SerialNumber:   "CERT-ABC123-XYZ45",
		IssueDate:      time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
		CustomData:     map[string]string{"course": "Intro to Baking"},
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	doc, err := Render(testTemplate(), testPNG(t, 800, 600), testData())
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF-")) {
		t.Errorf("output does not start with %%PDF- header")
	}
	if len(doc.Bytes) < 1000 {
		t.Errorf("output suspiciously small: %d bytes", len(doc.Bytes))
	}
	want := "certificate_Jane_Doe_1773570600000.pdf"
	if doc.FileName != want {
		t.Errorf("FileName = %q, want %q", doc.FileName, want)
	}
}

func TestRender_JPEGBackground(t *testing.T) {
	doc, err := Render(testTemplate(), testJPEG(t, 640, 480), testData())
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF-")) {
		t.Errorf("output does not start with %%PDF- header")
	}
}

func TestRender_Deterministic(t *testing.T) {
	bg := testPNG(t, 400, 300)
	data := testData()

	a, err := Render(testTemplate(), bg, data)
	if err != nil {
		t.Fatalf("first Render() error: %v", err)
	}
	b, err := Render(testTemplate(), bg, data)
	if err != nil {
		t.Fatalf("second Render() error: %v", err)
	}
	if !bytes.Equal(a.Bytes, b.Bytes) {
		t.Error("two renders with identical inputs produced different bytes")
	}
}

func TestRender_BadBackground(t *testing.T) {
	_, err := Render(testTemplate(), []byte("not an image"), testData())
	if err == nil {
		t.Fatal("Render() succeeded with garbage background")
	}
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("error type = %T, want *RenderError", err)
	}
	if rerr.Reason != "background" {
		t.Errorf("Reason = %q, want %q", rerr.Reason, "background")
	}
}

func TestRender_UnsupportedFormat(t *testing.T) {
	// A GIF header decodes via neither registered format.
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	_, err := Render(testTemplate(), gif, testData())
	if err == nil {
		t.Fatal("Render() succeeded with GIF background")
	}
}

func TestBaselineY(t *testing.T) {
	// A field at y=100 with a 20pt font on a 600pt page: baseline sits at
	// 480 from the bottom, i.e. 120 from the top.
	got := BaselineY(600, 100, 20)
	if got != 480 {
		t.Errorf("BaselineY(600, 100, 20) = %v, want 480", got)
	}
}

func TestFileName_ReplacesSpaces(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	got := FileName("Mary Jane Watson", at)
	want := "certificate_Mary_Jane_Watson_1700000000000.pdf"
	if got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestResolveFieldText(t *testing.T) {
	data := testData()

	tests := []struct {
		fieldName string
		want      string
	}{
		{"recipient_name", "Jane Doe"},
		{"name", "Jane Doe"},
		{"Recipient_Name", "Jane Doe"},
		{"recipient_email", "jane@example.com"},
		{"email", "jane@example.com"},
		{"issue_date", "3/15/2026"},
		{"date", "3/15/2026"},
		{"serial_number", "CERT-ABC123-XYZ45"},
		{"serial", "CERT-ABC123-XYZ45"},
		{"course", "Intro to Baking"},
		{"signature_line", "signature_line"},
	}

	for _, tt := range tests {
		t.Run(tt.fieldName, func(t *testing.T) {
			got := resolveFieldText(models.Field{Name: tt.fieldName}, data)
			if got != tt.want {
				t.Errorf("resolveFieldText(%q) = %q, want %q", tt.fieldName, got, tt.want)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
	}{
		{"#000000", 0, 0, 0},
		{"#ffffff", 255, 255, 255},
		{"#FF8000", 255, 128, 0},
		{"#abc", 170, 187, 204},
		{"#000", 0, 0, 0},
		{"#fff", 255, 255, 255},
		{"garbage", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, g, b := parseHexColor(tt.in)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("parseHexColor(%q) = (%d, %d, %d), want (%d, %d, %d)",
					tt.in, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}
