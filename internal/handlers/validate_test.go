package handlers

import (
	"strings"
	"testing"
)

func validRequest() generateRequest {
	return generateRequest{
		TemplateID:     "7b8a2b52-0000-0000-0000-000000000002",
		RecipientName:  "Jane Doe",
		RecipientEmail: "jane@example.com",
		CustomData:     map[string]string{"course": "Intro to Baking"},
	}
}

func TestValidateIssueRequest_Valid(t *testing.T) {
	req := validRequest()
	if msg := validateIssueRequest(&req); msg != "" {
		t.Errorf("validateIssueRequest() = %q, want empty", msg)
	}
}

func TestValidateIssueRequest_TrimsWhitespace(t *testing.T) {
	req := validRequest()
	req.RecipientName = "  Jane Doe  "
	req.RecipientEmail = " jane@example.com "

	if msg := validateIssueRequest(&req); msg != "" {
		t.Fatalf("validateIssueRequest() = %q, want empty", msg)
	}
	if req.RecipientName != "Jane Doe" {
		t.Errorf("RecipientName = %q, want trimmed", req.RecipientName)
	}
	if req.RecipientEmail != "jane@example.com" {
		t.Errorf("RecipientEmail = %q, want trimmed", req.RecipientEmail)
	}
}

func TestValidateIssueRequest_Errors(t *testing.T) {
	tooManyKeys := make(map[string]string)
	for i := 0; i < maxCustomDataKeys+1; i++ {
		tooManyKeys[strings.Repeat("k", i+1)] = "v"
	}

	tests := []struct {
		name   string
		mutate func(*generateRequest)
		want   string
	}{
		{name: "blank name", mutate: func(r *generateRequest) { r.RecipientName = "   " },
			want: "recipient_name is required"},
		{name: "long name", mutate: func(r *generateRequest) { r.RecipientName = strings.Repeat("x", 201) },
			want: "recipient_name is too long"},
		{name: "blank email", mutate: func(r *generateRequest) { r.RecipientEmail = "" },
			want: "recipient_email is required"},
		{name: "invalid email", mutate: func(r *generateRequest) { r.RecipientEmail = "not-an-email" },
			want: "not a valid email"},
		{name: "missing template", mutate: func(r *generateRequest) { r.TemplateID = "" },
			want: "template_id is required"},
		{name: "too many custom keys", mutate: func(r *generateRequest) { r.CustomData = tooManyKeys },
			want: "too many keys"},
		{name: "empty custom key", mutate: func(r *generateRequest) { r.CustomData = map[string]string{" ": "v"} },
			want: "keys must not be empty"},
		{name: "long custom value", mutate: func(r *generateRequest) {
			r.CustomData = map[string]string{"course": strings.Repeat("x", 501)}
		}, want: "is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			msg := validateIssueRequest(&req)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("validateIssueRequest() = %q, want substring %q", msg, tt.want)
			}
		})
	}
}

func TestValidateTemplateRequest(t *testing.T) {
	if msg := validateTemplateRequest("Course Completion", "desc"); msg != "" {
		t.Errorf("validateTemplateRequest() = %q, want empty", msg)
	}
	if msg := validateTemplateRequest(strings.Repeat("x", 301), ""); !strings.Contains(msg, "title is too long") {
		t.Errorf("long title: got %q", msg)
	}
	if msg := validateTemplateRequest("ok", strings.Repeat("x", 1001)); !strings.Contains(msg, "description is too long") {
		t.Errorf("long description: got %q", msg)
	}
}
