package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for request fields.
const (
	maxRecipientNameLen = 200
	maxEmailLen         = 320
	maxTitleLen         = 300
	maxDescriptionLen   = 1_000
	maxCustomDataKeys   = 20
	maxCustomValueLen   = 500
)

// validateIssueRequest checks generation inputs and returns the first error
// found, or "" if valid.
func validateIssueRequest(req *generateRequest) string {
	req.RecipientName = strings.TrimSpace(req.RecipientName)
	if req.RecipientName == "" {
		return "recipient_name is required"
	}
	if utf8.RuneCountInString(req.RecipientName) > maxRecipientNameLen {
		return "recipient_name is too long (max 200 characters)"
	}

	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	if req.RecipientEmail == "" {
		return "recipient_email is required"
	}
	if len(req.RecipientEmail) > maxEmailLen {
		return "recipient_email is too long"
	}
	if _, err := mail.ParseAddress(req.RecipientEmail); err != nil {
		return "recipient_email is not a valid email address"
	}

	if req.TemplateID == "" {
		return "template_id is required"
	}

	if len(req.CustomData) > maxCustomDataKeys {
		return "custom_data has too many keys (max 20)"
	}
	for k, v := range req.CustomData {
		if strings.TrimSpace(k) == "" {
			return "custom_data keys must not be empty"
		}
		if utf8.RuneCountInString(v) > maxCustomValueLen {
			return "custom_data value for " + k + " is too long (max 500 characters)"
		}
	}

	return ""
}

// validateTemplateRequest checks template create/update inputs beyond the
// model-level field validation.
func validateTemplateRequest(title, description string) string {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "title is too long (max 300 characters)"
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "description is too long (max 1,000 characters)"
	}
	return ""
}
