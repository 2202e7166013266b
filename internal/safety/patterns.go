package safety

import "regexp"

// Pre-compiled attack patterns — compiled once at startup, never during a
// request. Two families are tracked separately: mid-text injection phrasing
// and sentence-initial prefix attacks. A prefix attack is structurally
// distinct (anchored at position 0) even where its vocabulary overlaps the
// injection family, so matching both compounds the penalty.
var injectionPatterns = []struct {
	id string
	re *regexp.Regexp
}{
	{"ignore_previous_instructions", regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions|prompts|commands)`)},
	{"disregard_previous_instructions", regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions|prompts|commands)`)},
	{"forget_previous_instructions", regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|above)\s+(instructions|prompts|commands)`)},
	{"override_system_instructions", regexp.MustCompile(`(?i)override\s+(system|safety|security)\s+(instructions|protocols|settings)`)},
	{"prompt_override", regexp.MustCompile(`(?i)(system|prompt)\s+(prompt\s+)?override`)},
	{"bypass_safety_checks", regexp.MustCompile(`(?i)bypass\s+(all\s+)?(safety|security)\s+(checks|protocols|settings)`)},
	{"act_unrestricted", regexp.MustCompile(`(?i)act\s+as\s+(if\s+)?you\s+(are|were)\s+(not|no\s+longer)\s+(restricted|limited|bound)`)},
	{"jailbroken_claim", regexp.MustCompile(`(?i)you\s+(are|have)\s+been\s+(jailbroken|freed|liberated)`)},
	{"new_instructions_framing", regexp.MustCompile(`(?i)new\s+(instructions|commands|directives)\s*:`)},
	{"system_prompt_framing", regexp.MustCompile(`(?i)system\s+(prompt|message)\s*:`)},
	{"developer_mode", regexp.MustCompile(`(?i)developer\s+(mode|override|bypass)`)},
	{"sudo_mode", regexp.MustCompile(`(?i)sudo\s+(mode|access|override)`)},
	{"admin_mode", regexp.MustCompile(`(?i)admin\s+(mode|access|override)`)},
	{"pretend_not_assistant", regexp.MustCompile(`(?i)pretend\s+you\s+are\s+(not|no\s+longer)\s+an?\s+(AI|assistant|chatbot)`)},
	// Delimiter smuggling: a blank-line "====" fence followed by an
	// "ignore" directive, used to fake a section break in the prompt.
	{"delimiter_injection", regexp.MustCompile(`(?i)\n\n={2,}\n\nignore`)},
}

var prefixAttackPatterns = []struct {
	id string
	re *regexp.Regexp
}{
	{"ignore_previous", regexp.MustCompile(`(?i)^\s*ignore\s+previous`)},
	{"disregard_previous", regexp.MustCompile(`(?i)^\s*disregard\s+previous`)},
	{"forget_everything", regexp.MustCompile(`(?i)^\s*forget\s+everything`)},
	{"new_instruction", regexp.MustCompile(`(?i)^\s*new\s+instruction\s*:`)},
	{"system_anchor", regexp.MustCompile(`(?i)^\s*system\s*:`)},
	{"override_anchor", regexp.MustCompile(`(?i)^\s*override\s*:`)},
}

// sensitiveOperations lists operation names and their natural-language
// equivalents. Mentions are informational on their own — they only lower
// the score in strict mode, where each distinct mention compounds.
var sensitiveOperations = []string{
	"send_airtime",
	"send_message",
	"send_whatsapp",
	"make_voice_call",
	"send_mobile_data",
	"send_ussd",
	"send airtime",
	"send message",
	"voice call",
	"mobile data",
	"whatsapp message",
}
