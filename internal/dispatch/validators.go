package dispatch

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Args is the raw, untyped argument bag supplied by the caller — one per
// dispatch call. Values are strings, numbers, or booleans as the model
// emitted them.
type Args map[string]any

// ValidationError identifies the first parameter whose constraint failed.
// Validation is fail-fast: no partial recovery, no auto-correction.
type ValidationError struct {
	Parameter string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Parameter, e.Reason)
}

// Bundle is the canonical form of a data-bundle argument: a positive
// quantity and a normalized unit.
type Bundle struct {
	Quantity int
	Unit     string // "MB" or "GB"
}

func (b Bundle) String() string {
	return strconv.Itoa(b.Quantity) + b.Unit
}

// Validated holds an operation's arguments after every required field
// passed its class validator. It is only constructed on full success; a
// partial failure aborts construction and yields a ValidationError.
type Validated struct {
	values map[string]any
}

// Has reports whether the parameter was supplied (or defaulted).
func (v *Validated) Has(name string) bool {
	_, ok := v.values[name]
	return ok
}

// String returns the canonical string value for name, or "" if absent.
func (v *Validated) String(name string) string {
	s, _ := v.values[name].(string)
	return s
}

// Int returns the canonical integer value for name, or 0 if absent.
func (v *Validated) Int(name string) int {
	i, _ := v.values[name].(int)
	return i
}

// Bool returns the canonical boolean value for name, or false if absent.
func (v *Validated) Bool(name string) bool {
	b, _ := v.values[name].(bool)
	return b
}

// Bundle returns the canonical bundle value for name.
func (v *Validated) Bundle(name string) Bundle {
	b, _ := v.values[name].(Bundle)
	return b
}

// Validate applies the operation's parameter schema to the raw bag:
// missing required parameters are reported first, then the compiled
// shape schema runs, then each class validator in declaration order.
// The first violated constraint aborts with a single ValidationError.
func (op *Operation) Validate(raw Args) (*Validated, *ValidationError) {
	// An omitted bag is an empty bag: parameterless operations are
	// callable with no arguments at all, and a nil map would otherwise
	// serialize as JSON null and fail the object-shape check.
	if raw == nil {
		raw = Args{}
	}

	var missing []string
	for _, p := range op.Params {
		if !p.Required {
			continue
		}
		if _, ok := raw[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Parameter: missing[0],
			Reason:    "missing required parameter(s): " + strings.Join(missing, ", "),
		}
	}

	if reason := op.validateShape(raw); reason != "" {
		return nil, &ValidationError{Parameter: op.Name, Reason: reason}
	}

	values := make(map[string]any, len(op.Params))
	for _, p := range op.Params {
		rawVal, ok := raw[p.Name]
		if !ok {
			if p.Default != nil {
				values[p.Name] = p.Default
			}
			continue
		}
		canonical, err := validateParam(p.Class, rawVal)
		if err != nil {
			return nil, &ValidationError{Parameter: p.Name, Reason: err.Error()}
		}
		values[p.Name] = canonical
	}

	return &Validated{values: values}, nil
}

// validateParam dispatches to the class validator and returns the
// canonical typed value.
func validateParam(class ParamClass, raw any) (any, error) {
	switch class {
	case ClassText:
		return validateText(raw)
	case ClassPhone:
		return validatePhone(raw)
	case ClassCurrency:
		return validateCurrency(raw)
	case ClassAmount:
		return validateAmount(raw)
	case ClassBundle:
		return validateBundle(raw)
	case ClassPlan:
		return validatePlan(raw)
	case ClassURL:
		return validateURL(raw)
	case ClassVoice:
		return validateVoice(raw)
	case ClassMedia:
		return validateMedia(raw)
	case ClassLanguage:
		return validateLanguage(raw)
	case ClassInt:
		return validateInt(raw)
	case ClassBool:
		return validateBool(raw)
	default:
		return nil, fmt.Errorf("unknown parameter class %d", class)
	}
}

func asString(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", raw)
	}
	return s, nil
}

func validateText(raw any) (any, error) {
	s, err := asString(raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("must not be empty")
	}
	return s, nil
}

var phoneDigits = regexp.MustCompile(`^\+\d+$`)

func validatePhone(raw any) (any, error) {
	s, err := asString(raw)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(s, "+") {
		return nil, fmt.Errorf("phone number must start with +")
	}
	if !phoneDigits.MatchString(s) {
		return nil, fmt.Errorf("phone number must be + followed by digits only")
	}
	return s, nil
}

var currencyCode = regexp.MustCompile(`^[A-Za-z]{3}$`)

func validateCurrency(raw any) (any, error) {
	s, err := asString(raw)
	if err != nil {
		return nil, err
	}
	if !currencyCode.MatchString(s) {
		return nil, fmt.Errorf("currency code must be exactly 3 letters")
	}
	return strings.ToUpper(s), nil
}

// amountGrammar: non-negative decimal with at most 2 fraction digits.
var amountGrammar = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

func validateAmount(raw any) (any, error) {
	var s string
	switch v := raw.(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		if v < 0 {
			return nil, fmt.Errorf("amount must not be negative")
		}
		if v != math.Trunc(v*100)/100 {
			return nil, fmt.Errorf("amount has more than 2 fraction digits")
		}
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v < 0 {
			return nil, fmt.Errorf("amount must not be negative")
		}
		s = strconv.Itoa(v)
	default:
		return nil, fmt.Errorf("expected a decimal amount, got %T", raw)
	}
	if !amountGrammar.MatchString(s) {
		return nil, fmt.Errorf("amount %q is not a non-negative decimal with at most 2 fraction digits", s)
	}
	return s, nil
}

var bundleGrammar = regexp.MustCompile(`^(\d+)\s*(?i:(MB|GB))?$`)

func validateBundle(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		m := bundleGrammar.FindStringSubmatch(strings.TrimSpace(v))
		if m == nil {
			return nil, fmt.Errorf("bundle %q must be a quantity with optional MB/GB unit", v)
		}
		quantity, err := strconv.Atoi(m[1])
		if err != nil || quantity <= 0 {
			return nil, fmt.Errorf("bundle quantity must be a positive integer")
		}
		unit := strings.ToUpper(m[2])
		if unit == "" {
			unit = "MB"
		}
		return Bundle{Quantity: quantity, Unit: unit}, nil
	case float64:
		if v != math.Trunc(v) || v <= 0 {
			return nil, fmt.Errorf("bundle quantity must be a positive integer")
		}
		return Bundle{Quantity: int(v), Unit: "MB"}, nil
	case int:
		if v <= 0 {
			return nil, fmt.Errorf("bundle quantity must be a positive integer")
		}
		return Bundle{Quantity: v, Unit: "MB"}, nil
	default:
		return nil, fmt.Errorf("expected a bundle quantity, got %T", raw)
	}
}

// planValidity maps accepted plan spellings to the canonical validity
// period the provider API expects.
var planValidity = map[string]string{
	"day":     "Day",
	"daily":   "Day",
	"week":    "Week",
	"weekly":  "Week",
	"month":   "Month",
	"monthly": "Month",
}

func validatePlan(raw any) (any, error) {
	s, err := asString(raw)
	if err != nil {
		return nil, err
	}
	validity, ok := planValidity[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return nil, fmt.Errorf("invalid plan duration %q: must be daily, weekly, or monthly", s)
	}
	return validity, nil
}

func validateURL(raw any) (any, error) {
	s, err := asString(raw)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return nil, fmt.Errorf("must be an http:// or https:// URL")
	}
	return s, nil
}

func validateVoice(raw any) (any, error) {
	s, err := asString(raw)
	if err != nil {
		return nil, err
	}
	voice := strings.ToLower(strings.TrimSpace(s))
	if voice != "man" && voice != "woman" {
		return nil, fmt.Errorf("voice must be either 'man' or 'woman'")
	}
	return voice, nil
}

// mediaTypes in the provider's canonical capitalization.
var mediaTypes = map[string]string{
	"image": "Image",
	"video": "Video",
	"audio": "Audio",
	"voice": "Voice",
}

func validateMedia(raw any) (any, error) {
	s, err := asString(raw)
	if err != nil {
		return nil, err
	}
	canonical, ok := mediaTypes[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return nil, fmt.Errorf("media type must be one of Image, Video, Audio, Voice")
	}
	return canonical, nil
}

func validateLanguage(raw any) (any, error) {
	s, err := asString(raw)
	if err != nil {
		return nil, err
	}
	lang := strings.ToLower(strings.TrimSpace(s))
	switch lang {
	case "french", "arabic", "portuguese":
		return lang, nil
	default:
		return nil, fmt.Errorf("target language must be French, Arabic, or Portuguese")
	}
}

func validateInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		if v <= 0 {
			return nil, fmt.Errorf("must be a positive integer")
		}
		return v, nil
	case float64:
		if v != math.Trunc(v) || v <= 0 {
			return nil, fmt.Errorf("must be a positive integer")
		}
		return int(v), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || i <= 0 {
			return nil, fmt.Errorf("must be a positive integer")
		}
		return i, nil
	default:
		return nil, fmt.Errorf("expected an integer, got %T", raw)
	}
}

func validateBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
		if err != nil {
			return nil, fmt.Errorf("expected a boolean")
		}
		return b, nil
	default:
		return nil, fmt.Errorf("expected a boolean, got %T", raw)
	}
}

// LoggableArgs renders the raw bag as strings for observability output.
// It does no validation — callers mask it before logging.
func LoggableArgs(raw Args) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
