package dispatch

import (
	"context"
	"strings"
	"testing"
)

func noopHandler() Handler {
	return HandlerFunc(func(ctx context.Context, args *Validated) (any, error) {
		return nil, nil
	})
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		wantErr bool
	}{
		{"international format", "+254712345678", false},
		{"short country code", "+14155552671", false},
		{"missing plus", "0712345678", true},
		{"letters in number", "+2547abc5678", true},
		{"plus only", "+", true},
		{"embedded spaces", "+254 712 345 678", true},
		{"not a string", 254712345678.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validatePhone(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePhone(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	tests := []struct {
		raw     any
		want    string
		wantErr bool
	}{
		{"KES", "KES", false},
		{"usd", "USD", false},
		{"Ksh", "KSH", false},
		{"KE", "", true},
		{"KESH", "", true},
		{"K3S", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := validateCurrency(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateCurrency(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("validateCurrency(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		wantErr bool
	}{
		{"integer string", "10", false},
		{"one fraction digit", "10.5", false},
		{"two fraction digits", "10.55", false},
		{"three fraction digits", "10.555", true},
		{"negative string", "-10", true},
		{"numeric", 10.5, false},
		{"negative numeric", -1.0, true},
		{"not a number", "ten", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateAmount(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAmount(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBundle(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    Bundle
		wantErr bool
	}{
		{"bare number string", "50", Bundle{50, "MB"}, false},
		{"megabytes", "100MB", Bundle{100, "MB"}, false},
		{"gigabytes", "1GB", Bundle{1, "GB"}, false},
		{"lowercase unit", "2gb", Bundle{2, "GB"}, false},
		{"space before unit", "500 mb", Bundle{500, "MB"}, false},
		{"numeric", 50.0, Bundle{50, "MB"}, false},
		{"zero", "0MB", Bundle{}, true},
		{"negative numeric", -5.0, Bundle{}, true},
		{"unknown unit", "5TB", Bundle{}, true},
		{"no quantity", "GB", Bundle{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateBundle(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateBundle(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && got.(Bundle) != tt.want {
				t.Errorf("validateBundle(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidatePlan(t *testing.T) {
	tests := []struct {
		raw     any
		want    string
		wantErr bool
	}{
		{"daily", "Day", false},
		{"day", "Day", false},
		{"WEEKLY", "Week", false},
		{"Monthly", "Month", false},
		{"month", "Month", false},
		{"yearly", "", true},
		{"fortnight", "", true},
	}

	for _, tt := range tests {
		got, err := validatePlan(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("validatePlan(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("validatePlan(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestValidateURLVoiceMediaLanguage(t *testing.T) {
	if _, err := validateURL("https://example.com/a.mp3"); err != nil {
		t.Errorf("https URL rejected: %v", err)
	}
	if _, err := validateURL("ftp://example.com/a.mp3"); err == nil {
		t.Error("ftp URL accepted")
	}
	if got, _ := validateVoice("Woman"); got != "woman" {
		t.Errorf("voice normalization = %v", got)
	}
	if _, err := validateVoice("child"); err == nil {
		t.Error("invalid voice accepted")
	}
	if got, _ := validateMedia("image"); got != "Image" {
		t.Errorf("media normalization = %v", got)
	}
	if _, err := validateMedia("Document"); err == nil {
		t.Error("invalid media type accepted")
	}
	if got, _ := validateLanguage("French"); got != "french" {
		t.Errorf("language normalization = %v", got)
	}
	if _, err := validateLanguage("German"); err == nil {
		t.Error("unsupported language accepted")
	}
}

func TestOperationValidate_MissingRequiredReportedFirst(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Operation{
		Name: "send_airtime",
		Params: []Param{
			{Name: "phone_number", Class: ClassPhone, Required: true},
			{Name: "currency_code", Class: ClassCurrency, Required: true},
			{Name: "amount", Class: ClassAmount, Required: true},
		},
		Handler: noopHandler(),
	})
	op, _ := reg.Lookup("send_airtime")

	// The bag carries a malformed phone number AND omits two required
	// fields; the missing fields win.
	_, verr := op.Validate(Args{"phone_number": "0712345678"})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(verr.Reason, "missing required") {
		t.Errorf("expected missing-required error, got: %s", verr.Reason)
	}
	if !strings.Contains(verr.Reason, "currency_code") || !strings.Contains(verr.Reason, "amount") {
		t.Errorf("expected all missing parameters named, got: %s", verr.Reason)
	}
}

func TestOperationValidate_DefaultsApplied(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Operation{
		Name: "search_news",
		Params: []Param{
			{Name: "query", Class: ClassText, Required: true},
			{Name: "max_results", Class: ClassInt, Default: 5},
		},
		Handler: noopHandler(),
	})
	op, _ := reg.Lookup("search_news")

	validated, verr := op.Validate(Args{"query": "technology"})
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if got := validated.Int("max_results"); got != 5 {
		t.Errorf("default max_results = %d, want 5", got)
	}

	validated, verr = op.Validate(Args{"query": "technology", "max_results": 3.0})
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if got := validated.Int("max_results"); got != 3 {
		t.Errorf("max_results = %d, want 3", got)
	}
}

func TestOperationValidate_ShapeRejectsWrongTypes(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Operation{
		Name: "send_message",
		Params: []Param{
			{Name: "phone_number", Class: ClassPhone, Required: true},
			{Name: "message", Class: ClassText, Required: true},
		},
		Handler: noopHandler(),
	})
	op, _ := reg.Lookup("send_message")

	_, verr := op.Validate(Args{"phone_number": "+254712345678", "message": true})
	if verr == nil {
		t.Fatal("expected shape validation to reject boolean message")
	}
}

func TestRegistry_RejectsBadRegistrations(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Operation{Name: "", Handler: noopHandler()}); err == nil {
		t.Error("empty name accepted")
	}
	if err := reg.Register(Operation{Name: "op"}); err == nil {
		t.Error("nil handler accepted")
	}
	if err := reg.Register(Operation{Name: "op", Handler: noopHandler()}); err != nil {
		t.Fatalf("valid registration rejected: %v", err)
	}
	if err := reg.Register(Operation{Name: "op", Handler: noopHandler()}); err == nil {
		t.Error("duplicate name accepted")
	}
	if err := reg.Register(Operation{
		Name:    "dup_param",
		Params:  []Param{{Name: "a", Class: ClassText}, {Name: "a", Class: ClassText}},
		Handler: noopHandler(),
	}); err == nil {
		t.Error("duplicate parameter accepted")
	}
}
