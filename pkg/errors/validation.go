package errors

import (
	"strings"
	"unicode"

	"github.com/matzehuels/ganttsync/pkg/calendar"
)

// MaxSourceBytes bounds the chart source accepted from untrusted callers.
// Charts are hand-written; anything larger is almost certainly not one.
const MaxSourceBytes = 1 << 20

// ValidateSource checks chart source received over the network.
func ValidateSource(src string) error {
	if len(src) > MaxSourceBytes {
		return New(ErrCodeInvalidInput, "source too large (max %d bytes)", MaxSourceBytes)
	}
	if strings.ContainsRune(src, '\x00') {
		return New(ErrCodeInvalidInput, "source contains null bytes")
	}
	return nil
}

// ValidateDate checks an ISO YYYY-MM-DD date. An empty string is valid and
// means "not set".
func ValidateDate(field, value string) error {
	if value == "" || calendar.IsISO(value) {
		return nil
	}
	return New(ErrCodeInvalidDate, "%s must be a YYYY-MM-DD date, got %q", field, value)
}

// ValidateLabel checks a task or section name supplied for an edit.
//
// Validation rules:
//   - Label cannot be empty
//   - Maximum length of 200 characters
//   - No control characters (they would split the line)
func ValidateLabel(field, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", field)
	}
	const maxLabelLength = 200
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", field, maxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains control characters", field)
		}
	}
	return nil
}

// ValidateURL validates a link value. It ensures the URL has a safe scheme
// (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
