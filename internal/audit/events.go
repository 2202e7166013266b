// Package audit persists one event per dispatch attempt and safety
// evaluation. Writers are asynchronous: Write must never block the
// request path. Argument values in events are already masked by the
// caller — nothing in this package sees raw PII.
package audit

import "time"

// EventWriter is the interface for writing audit events.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *DispatchEvent)
	Close()
}

// DispatchEvent records a single dispatch attempt or safety check.
type DispatchEvent struct {
	RequestID       string
	Timestamp       time.Time
	Operation       string
	MaskedArguments map[string]string
	UserTextPreview string // first 500 chars, PII-masked
	SafetyScore     float64
	SafetySafe      bool
	FlaggedPatterns []string
	Outcome         string // "success", "unknown_operation", "invalid_argument", "handler_error", "safety_violation", "rate_limited"
	ErrorMessage    string
	LatencyMs       float64
}

// PreviewLength is the max chars stored in user_text_preview.
const PreviewLength = 500

// TruncatePreview returns the first N characters (runes) of a string for
// preview storage. It never splits a multi-byte UTF-8 character.
func TruncatePreview(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}
