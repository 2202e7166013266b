package safety

import (
	"fmt"
	"strings"
)

const reportBorder = "============================================================"

// Report evaluates text and renders a fixed-format, delimiter-bordered
// block suitable for logging or operator display. It is plain text, not a
// machine-parsed structure.
func (e *Evaluator) Report(text string) string {
	result := e.Evaluate(text)

	status := "SAFE"
	if !result.Safe {
		status = "UNSAFE"
	}

	lines := []string{
		reportBorder,
		"SAFETY EVALUATION REPORT",
		reportBorder,
		"Safety Status: " + status,
		fmt.Sprintf("Safety Score: %.2f/1.00", result.Score),
		fmt.Sprintf("Violations Detected: %d", len(result.FlaggedPatterns)),
		"",
		"Message: " + result.Message,
	}

	if len(result.FlaggedPatterns) > 0 {
		lines = append(lines, "", "Flagged Patterns:")
		for _, p := range result.FlaggedPatterns {
			lines = append(lines, "  - "+p)
		}
	}

	lines = append(lines, reportBorder)
	return strings.Join(lines, "\n")
}
