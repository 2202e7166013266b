// Package safety scores free-form user input for prompt-injection and
// jailbreak risk before it can influence a side-effecting tool dispatch.
// The evaluator is deliberately rule-based: additive, independent penalties
// over fixed pattern families keep every verdict deterministic and
// auditable, with no training-data dependency in front of operations that
// move money or send messages.
package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sema-ai/commsgate/internal/masking"
	"go.uber.org/zap"
)

// Policy holds the scoring constants. The magnitudes are fixed policy
// defaults, not derived values; override them only through configuration.
type Policy struct {
	// StrictMode adds a penalty per distinct sensitive-operation mention.
	StrictMode bool

	// SafeThreshold is the minimum score considered safe.
	SafeThreshold float64

	// FamilyPenalty is subtracted once per pattern family that matched.
	FamilyPenalty float64

	// SensitiveOpPenalty is subtracted per detected sensitive-operation
	// mention, strict mode only.
	SensitiveOpPenalty float64
}

// DefaultPolicy returns the standard scoring constants.
func DefaultPolicy() Policy {
	return Policy{
		StrictMode:         false,
		SafeThreshold:      0.6,
		FamilyPenalty:      0.5,
		SensitiveOpPenalty: 0.1,
	}
}

// Result is the verdict for a single evaluation. Invariant:
// Safe == (Score >= policy.SafeThreshold), and Score is clamped to [0, 1].
type Result struct {
	Safe            bool     `json:"is_safe"`
	Score           float64  `json:"score"`
	FlaggedPatterns []string `json:"flagged_patterns"`
	Message         string   `json:"message"`
}

// Evaluator scores input text against the attack pattern families.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	policy Policy
	logger *zap.Logger
}

// NewEvaluator creates an evaluator with the given policy. A nil logger
// disables evaluation logging.
func NewEvaluator(policy Policy, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{policy: policy, logger: logger}
}

// Evaluate scores text and returns a well-formed Result for any input,
// including the empty string (no patterns match, so it is safe). It never
// panics and allocates nothing beyond the result itself on the safe path.
func (e *Evaluator) Evaluate(text string) Result {
	var flagged []string

	injectionHit := false
	for _, p := range injectionPatterns {
		if p.re.MatchString(text) {
			injectionHit = true
			flagged = append(flagged, "injection:"+p.id)
		}
	}

	prefixHit := false
	for _, p := range prefixAttackPatterns {
		if p.re.MatchString(text) {
			prefixHit = true
			flagged = append(flagged, "prefix_attack:"+p.id)
		}
	}

	detectedOps := detectSensitiveOperations(text)

	// Both family penalties are independent and additive: stacking an
	// injection phrase with a prefix anchor should compound suspicion,
	// not register once.
	score := 1.0
	if injectionHit {
		score -= e.policy.FamilyPenalty
	}
	if prefixHit {
		score -= e.policy.FamilyPenalty
	}
	if e.policy.StrictMode {
		score -= e.policy.SensitiveOpPenalty * float64(len(detectedOps))
	}
	score = clamp01(score)

	safe := score >= e.policy.SafeThreshold

	var message string
	switch {
	case safe && len(detectedOps) > 0:
		message = "Input passed safety checks. Detected operations: " + strings.Join(detectedOps, ", ")
	case safe:
		message = "Input passed all safety checks."
	default:
		message = fmt.Sprintf("Input failed safety checks. Detected %d violations. Safety score: %.2f", len(flagged), score)
	}

	e.logger.Info("safety evaluation",
		zap.Bool("is_safe", safe),
		zap.Float64("score", score),
		zap.Int("violations", len(flagged)),
		zap.String("input_preview", MaskPII(preview(text))),
	)

	return Result{
		Safe:            safe,
		Score:           score,
		FlaggedPatterns: flagged,
		Message:         message,
	}
}

// detectSensitiveOperations returns the sensitive-operation keywords
// mentioned in text, in list order.
func detectSensitiveOperations(text string) []string {
	lower := strings.ToLower(text)
	var detected []string
	for _, op := range sensitiveOperations {
		if strings.Contains(lower, op) {
			detected = append(detected, op)
		}
	}
	return detected
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// previewLength bounds how much evaluated text enters a log line.
const previewLength = 120

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength])
}

// phoneLike matches international-format numbers so they can be masked
// before the evaluated text is logged.
var phoneLike = regexp.MustCompile(`\+\d{7,15}`)

// MaskPII masks phone-number-like substrings so free-form text can be
// logged or persisted.
func MaskPII(text string) string {
	return phoneLike.ReplaceAllStringFunc(text, masking.Mask)
}
