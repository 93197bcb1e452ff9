package models

import "testing"

func validTemplate() Template {
	return Template{
		Title:        "Course Completion",
		BackgroundID: "b1f9c6a0-0000-0000-0000-000000000000",
		Fields: []Field{
			{Name: "recipient_name", X: 100, Y: 200, FontSize: 24, Color: "#000000", FontFamily: "helvetica", FontWeight: "bold", TextAlign: "left"},
		},
	}
}

func TestTemplateValidate_Valid(t *testing.T) {
	tpl := validTemplate()
	if errs := tpl.Validate(); len(errs) != 0 {
		t.Fatalf("Validate() = %v, want no errors", errs)
	}
}

func TestTemplateValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Template)
		message string
	}{
		{
			name:    "missing title",
			mutate:  func(tpl *Template) { tpl.Title = "   " },
			message: "title is required",
		},
		{
			name:    "missing background",
			mutate:  func(tpl *Template) { tpl.BackgroundID = "" },
			message: "background_id is required",
		},
		{
			name:    "no fields",
			mutate:  func(tpl *Template) { tpl.Fields = nil },
			message: "at least one field is required",
		},
		{
			name:    "empty field name",
			mutate:  func(tpl *Template) { tpl.Fields[0].Name = "" },
			message: "field name is required",
		},
		{
			name:    "negative x",
			mutate:  func(tpl *Template) { tpl.Fields[0].X = -1 },
			message: "x must be >= 0",
		},
		{
			name:    "negative y",
			mutate:  func(tpl *Template) { tpl.Fields[0].Y = -0.5 },
			message: "y must be >= 0",
		},
		{
			name:    "font too small",
			mutate:  func(tpl *Template) { tpl.Fields[0].FontSize = 7 },
			message: "font_size must be between 8 and 72",
		},
		{
			name:    "font too large",
			mutate:  func(tpl *Template) { tpl.Fields[0].FontSize = 73 },
			message: "font_size must be between 8 and 72",
		},
		{
			name:    "bad color",
			mutate:  func(tpl *Template) { tpl.Fields[0].Color = "red" },
			message: "color must be a hex value like #000 or #1a2b3c",
		},
		{
			name:    "bad color length",
			mutate:  func(tpl *Template) { tpl.Fields[0].Color = "#12345" },
			message: "color must be a hex value like #000 or #1a2b3c",
		},
		{
			name:    "bad weight",
			mutate:  func(tpl *Template) { tpl.Fields[0].FontWeight = "heavy" },
			message: "font_weight must be normal or bold",
		},
		{
			name:    "bad alignment",
			mutate:  func(tpl *Template) { tpl.Fields[0].TextAlign = "justify" },
			message: "text_align must be left, center, or right",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := validTemplate()
			tt.mutate(&tpl)

			errs := tpl.Validate()
			if len(errs) == 0 {
				t.Fatal("Validate() returned no errors, want at least one")
			}
			found := false
			for _, e := range errs {
				if e.Message == tt.message {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want an error with message %q", errs, tt.message)
			}
		})
	}
}

func TestTemplateValidate_MultipleFieldErrors(t *testing.T) {
	tpl := validTemplate()
	tpl.Fields = append(tpl.Fields, Field{Name: "", X: -5, Y: 10, FontSize: 12, Color: "#fff", FontFamily: "times", FontWeight: "normal", TextAlign: "center"})

	errs := tpl.Validate()
	if len(errs) != 2 {
		t.Fatalf("Validate() returned %d errors, want 2: %v", len(errs), errs)
	}
	for _, e := range errs {
		if e.Index != 1 {
			t.Errorf("error index = %d, want 1: %+v", e.Index, e)
		}
	}
}

func TestFieldNormalize(t *testing.T) {
	f := Field{Name: "custom_note", X: 10, Y: 20}
	f.Normalize()

	if f.FontSize != DefaultFontSize {
		t.Errorf("FontSize = %v, want %v", f.FontSize, DefaultFontSize)
	}
	if f.Color != DefaultColor {
		t.Errorf("Color = %q, want %q", f.Color, DefaultColor)
	}
	if f.FontFamily != "helvetica" {
		t.Errorf("FontFamily = %q, want helvetica", f.FontFamily)
	}
	if f.FontWeight != FontWeightNormal {
		t.Errorf("FontWeight = %q, want %q", f.FontWeight, FontWeightNormal)
	}
	if f.TextAlign != TextAlignLeft {
		t.Errorf("TextAlign = %q, want %q", f.TextAlign, TextAlignLeft)
	}
}

func TestFieldNormalize_KeepsExplicitValues(t *testing.T) {
	f := Field{Name: "n", X: 1, Y: 2, FontSize: 30, Color: "#abc", FontFamily: "times", FontWeight: "bold", TextAlign: "right"}
	before := f
	f.Normalize()
	if f != before {
		t.Errorf("Normalize() changed explicit values: got %+v, want %+v", f, before)
	}
}
