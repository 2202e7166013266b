package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/sema-ai/commsgate/internal/dispatch"
	"github.com/sema-ai/commsgate/internal/news"
	"github.com/sema-ai/commsgate/internal/provider"
)

// fakeComms records the last call per method and returns canned values.
type fakeComms struct {
	airtimeArgs  []string
	smsArgs      []string
	ussdErr      error
	dataReq      provider.MobileDataRequest
	voiceArgs    []string
	whatsappReq  provider.WhatsAppRequest
	sandboxFlag  bool
	wallet       string
	appBalance   string
}

func (f *fakeComms) SendAirtime(_ context.Context, phone, currency, amount string) (*provider.AirtimeResponse, error) {
	f.airtimeArgs = []string{phone, currency, amount}
	return &provider.AirtimeResponse{NumSent: 1}, nil
}

func (f *fakeComms) SendSMS(_ context.Context, phone, message string) (*provider.SMSResponse, error) {
	f.smsArgs = []string{phone, message}
	return &provider.SMSResponse{}, nil
}

func (f *fakeComms) SendUSSD(_ context.Context, _, _ string) error {
	return f.ussdErr
}

func (f *fakeComms) SendMobileData(_ context.Context, req provider.MobileDataRequest) (*provider.MobileDataResponse, error) {
	f.dataReq = req
	return &provider.MobileDataResponse{}, nil
}

func (f *fakeComms) MakeVoiceCall(_ context.Context, from, to string) (*provider.VoiceResponse, error) {
	f.voiceArgs = []string{from, to}
	return &provider.VoiceResponse{}, nil
}

func (f *fakeComms) MakeVoiceCallWithText(_ context.Context, from, to, message, voiceType string) (*provider.VoiceResponse, error) {
	f.voiceArgs = []string{from, to, message, voiceType}
	return &provider.VoiceResponse{}, nil
}

func (f *fakeComms) MakeVoiceCallAndPlayAudio(_ context.Context, from, to, audioURL string) (*provider.VoiceResponse, error) {
	f.voiceArgs = []string{from, to, audioURL}
	return &provider.VoiceResponse{}, nil
}

func (f *fakeComms) SendWhatsApp(_ context.Context, req provider.WhatsAppRequest) (*provider.WhatsAppResponse, error) {
	f.whatsappReq = req
	return &provider.WhatsAppResponse{Status: "Sent"}, nil
}

func (f *fakeComms) WalletBalance(_ context.Context) (string, error) {
	return f.wallet, nil
}

func (f *fakeComms) ApplicationBalance(_ context.Context, sandbox bool) (string, error) {
	f.sandboxFlag = sandbox
	return f.appBalance, nil
}

type fakeNews struct {
	query string
	max   int
}

func (f *fakeNews) Search(_ context.Context, query string, maxResults int) ([]news.Article, error) {
	f.query, f.max = query, maxResults
	return []news.Article{{Title: "headline"}}, nil
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	return "[" + lang + "] " + text, nil
}

func dispatchOp(t *testing.T, r *dispatch.Registry, name string, raw dispatch.Args) (any, error) {
	t.Helper()
	op, ok := r.Lookup(name)
	if !ok {
		t.Fatalf("operation %q not registered", name)
	}
	args, verr := op.Validate(raw)
	if verr != nil {
		t.Fatalf("Validate(%s): %v", name, verr)
	}
	return op.Handler.Handle(context.Background(), args)
}

func TestRegistryCoversAllOperations(t *testing.T) {
	r := BuildRegistry(Deps{Comms: &fakeComms{}})

	want := []string{
		"get_application_balance",
		"get_wallet_balance",
		"make_voice_call",
		"make_voice_call_and_play_audio",
		"make_voice_call_with_text",
		"search_news",
		"send_airtime",
		"send_message",
		"send_mobile_data",
		"send_ussd",
		"send_whatsapp_message",
		"translate_text",
	}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("registered %d operations, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSensitiveFlags(t *testing.T) {
	r := BuildRegistry(Deps{Comms: &fakeComms{}})

	sensitive := map[string]bool{
		"send_airtime":                   true,
		"send_message":                   true,
		"send_ussd":                      true,
		"send_mobile_data":               true,
		"make_voice_call":                true,
		"make_voice_call_with_text":      true,
		"make_voice_call_and_play_audio": true,
		"send_whatsapp_message":          true,
		"get_wallet_balance":             false,
		"get_application_balance":        false,
		"search_news":                    false,
		"translate_text":                 false,
	}
	for name, want := range sensitive {
		op, ok := r.Lookup(name)
		if !ok {
			t.Fatalf("operation %q not registered", name)
		}
		if op.Sensitive != want {
			t.Errorf("%s Sensitive = %v, want %v", name, op.Sensitive, want)
		}
	}
}

func TestSendMessageRequiresUsername(t *testing.T) {
	comms := &fakeComms{}
	r := BuildRegistry(Deps{Comms: comms})

	op, ok := r.Lookup("send_message")
	if !ok {
		t.Fatal("send_message not registered")
	}
	if _, verr := op.Validate(dispatch.Args{
		"phone_number": "+254712345678",
		"message":      "hello",
	}); verr == nil || verr.Parameter != "username" {
		t.Fatalf("expected missing-username validation error, got %v", verr)
	}

	_, err := dispatchOp(t, r, "send_message", dispatch.Args{
		"phone_number": "+254712345678",
		"message":      "hello",
		"username":     "sandbox",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	want := []string{"+254712345678", "hello"}
	for i, w := range want {
		if comms.smsArgs[i] != w {
			t.Errorf("arg[%d] = %q, want %q", i, comms.smsArgs[i], w)
		}
	}
}

func TestSendAirtimeHandler(t *testing.T) {
	comms := &fakeComms{}
	r := BuildRegistry(Deps{Comms: comms})

	_, err := dispatchOp(t, r, "send_airtime", dispatch.Args{
		"phone_number":  "+254712345678",
		"currency_code": "kes",
		"amount":        "10",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	want := []string{"+254712345678", "KES", "10"}
	for i, w := range want {
		if comms.airtimeArgs[i] != w {
			t.Errorf("arg[%d] = %q, want %q", i, comms.airtimeArgs[i], w)
		}
	}
}

func TestSendMobileDataHandler(t *testing.T) {
	comms := &fakeComms{}
	r := BuildRegistry(Deps{Comms: comms, DataProductName: "data_product"})

	_, err := dispatchOp(t, r, "send_mobile_data", dispatch.Args{
		"phone_number": "+254712345678",
		"bundle":       "2GB",
		"provider":     "safaricom",
		"plan":         "weekly",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if comms.dataReq.Bundle.Quantity != 2 || comms.dataReq.Bundle.Unit != "GB" {
		t.Errorf("bundle = %+v", comms.dataReq.Bundle)
	}
	if comms.dataReq.Validity != "Week" {
		t.Errorf("validity = %q, want Week", comms.dataReq.Validity)
	}
	if comms.dataReq.ProductName != "data_product" {
		t.Errorf("product = %q", comms.dataReq.ProductName)
	}
}

func TestVoiceCallWithTextDefaultsVoice(t *testing.T) {
	comms := &fakeComms{}
	r := BuildRegistry(Deps{Comms: comms})

	_, err := dispatchOp(t, r, "make_voice_call_with_text", dispatch.Args{
		"from_number": "+254700000001",
		"to_number":   "+254712345678",
		"message":     "hello",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if comms.voiceArgs[3] != "woman" {
		t.Errorf("voice_type = %q, want woman", comms.voiceArgs[3])
	}
}

func TestWhatsAppRequiresTextOrMedia(t *testing.T) {
	comms := &fakeComms{}
	r := BuildRegistry(Deps{Comms: comms})

	if _, err := dispatchOp(t, r, "send_whatsapp_message", dispatch.Args{
		"wa_number":    "+254700000001",
		"phone_number": "+254712345678",
	}); err == nil {
		t.Error("neither message nor media accepted")
	}

	if _, err := dispatchOp(t, r, "send_whatsapp_message", dispatch.Args{
		"wa_number":    "+254700000001",
		"phone_number": "+254712345678",
		"media_type":   "image",
	}); err == nil {
		t.Error("media_type without url accepted")
	}

	_, err := dispatchOp(t, r, "send_whatsapp_message", dispatch.Args{
		"wa_number":    "+254700000001",
		"phone_number": "+254712345678",
		"media_type":   "image",
		"url":          "https://example.com/pic.png",
		"caption":      "a picture",
	})
	if err != nil {
		t.Fatalf("media message rejected: %v", err)
	}
	if comms.whatsappReq.MediaType != "Image" {
		t.Errorf("media type = %q, want canonical Image", comms.whatsappReq.MediaType)
	}
}

func TestApplicationBalanceSandboxFlag(t *testing.T) {
	comms := &fakeComms{appBalance: "KES 50.00"}
	r := BuildRegistry(Deps{Comms: comms})

	payload, err := dispatchOp(t, r, "get_application_balance", dispatch.Args{"sandbox": true})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !comms.sandboxFlag {
		t.Error("sandbox flag not forwarded")
	}
	if payload.(map[string]string)["balance"] != "KES 50.00" {
		t.Errorf("payload = %v", payload)
	}
}

func TestSearchNewsDefaultsMaxResults(t *testing.T) {
	searcher := &fakeNews{}
	r := BuildRegistry(Deps{Comms: &fakeComms{}, News: searcher})

	if _, err := dispatchOp(t, r, "search_news", dispatch.Args{"query": "elections"}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if searcher.query != "elections" || searcher.max != 5 {
		t.Errorf("search called with query=%q max=%d", searcher.query, searcher.max)
	}
}

func TestUnconfiguredCapabilitiesFail(t *testing.T) {
	r := BuildRegistry(Deps{Comms: &fakeComms{}})

	if _, err := dispatchOp(t, r, "search_news", dispatch.Args{"query": "q"}); !errors.Is(err, errNewsUnconfigured) {
		t.Errorf("search_news err = %v", err)
	}
	if _, err := dispatchOp(t, r, "translate_text", dispatch.Args{
		"text": "hi", "target_language": "french",
	}); !errors.Is(err, errTranslateUnconfigured) {
		t.Errorf("translate_text err = %v", err)
	}
}

func TestTranslateHandler(t *testing.T) {
	r := BuildRegistry(Deps{Comms: &fakeComms{}, Translator: fakeTranslator{}})

	payload, err := dispatchOp(t, r, "translate_text", dispatch.Args{
		"text":            "hello",
		"target_language": "French",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got := payload.(map[string]string)["translated_text"]; got != "[french] hello" {
		t.Errorf("payload = %q", got)
	}
}
