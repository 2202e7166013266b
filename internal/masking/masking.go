// Package masking redacts PII (phone numbers, API keys) before values
// reach logs, audit events, or safety reports. Masked values are for
// observability only — responses to the caller carry the originals.
package masking

import "strings"

// Marker is the fixed redaction returned for values too short to mask.
const Marker = "****"

// keepVisible is the number of trailing characters left unmasked.
const keepVisible = 4

// Mask replaces all but the last 4 characters of s with 'x', preserving
// length. Values shorter than 4 characters (including the empty string)
// collapse to the fixed marker so their length leaks nothing. Characters
// are runes, not bytes, so multi-byte input never gets split mid-rune.
func Mask(s string) string {
	r := []rune(s)
	if len(r) < keepVisible {
		return Marker
	}
	return strings.Repeat("x", len(r)-keepVisible) + string(r[len(r)-keepVisible:])
}

// MaskAll returns a copy of args with every key listed in sensitive
// masked. Keys absent from args are ignored.
func MaskAll(args map[string]string, sensitive []string) map[string]string {
	masked := make(map[string]string, len(args))
	for k, v := range args {
		masked[k] = v
	}
	for _, k := range sensitive {
		if v, ok := masked[k]; ok {
			masked[k] = Mask(v)
		}
	}
	return masked
}
