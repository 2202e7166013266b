// Package handlers binds the operation registry: each communication
// operation gets its parameter schema and a handler that adapts the
// validated arguments onto the provider clients.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/sema-ai/commsgate/internal/dispatch"
	"github.com/sema-ai/commsgate/internal/news"
	"github.com/sema-ai/commsgate/internal/provider"
	"github.com/sema-ai/commsgate/internal/translate"
)

// Comms is the slice of the provider client the handlers use.
type Comms interface {
	SendAirtime(ctx context.Context, phoneNumber, currencyCode, amount string) (*provider.AirtimeResponse, error)
	SendSMS(ctx context.Context, phoneNumber, message string) (*provider.SMSResponse, error)
	SendUSSD(ctx context.Context, phoneNumber, code string) error
	SendMobileData(ctx context.Context, req provider.MobileDataRequest) (*provider.MobileDataResponse, error)
	MakeVoiceCall(ctx context.Context, fromNumber, toNumber string) (*provider.VoiceResponse, error)
	MakeVoiceCallWithText(ctx context.Context, fromNumber, toNumber, message, voiceType string) (*provider.VoiceResponse, error)
	MakeVoiceCallAndPlayAudio(ctx context.Context, fromNumber, toNumber, audioURL string) (*provider.VoiceResponse, error)
	SendWhatsApp(ctx context.Context, req provider.WhatsAppRequest) (*provider.WhatsAppResponse, error)
	WalletBalance(ctx context.Context) (string, error)
	ApplicationBalance(ctx context.Context, sandbox bool) (string, error)
}

// Deps carries everything the operation handlers call out to. News and
// Translator may be nil; their operations then fail with a handler
// error instead of being left out of the registry.
type Deps struct {
	Comms      Comms
	News       news.Searcher
	Translator translate.Translator

	// DataProductName is the provider product used for mobile data
	// disbursements. Default: "mobiledata".
	DataProductName string
}

var errNewsUnconfigured = errors.New("news search is not configured")
var errTranslateUnconfigured = errors.New("translation is not configured")

// BuildRegistry registers every operation. The parameter schemas here
// are the single source of truth for what each operation accepts.
func BuildRegistry(deps Deps) *dispatch.Registry {
	if deps.DataProductName == "" {
		deps.DataProductName = "mobiledata"
	}

	r := dispatch.NewRegistry()

	r.MustRegister(dispatch.Operation{
		Name:        "send_airtime",
		Description: "Send airtime to a phone number in international format.",
		Sensitive:   true,
		Params: []dispatch.Param{
			{Name: "phone_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "currency_code", Class: dispatch.ClassCurrency, Required: true},
			{Name: "amount", Class: dispatch.ClassAmount, Required: true},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			return deps.Comms.SendAirtime(ctx,
				args.String("phone_number"),
				args.String("currency_code"),
				args.String("amount"))
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "send_message",
		Description: "Send an SMS message to a phone number.",
		Sensitive:   true,
		Params: []dispatch.Param{
			{Name: "phone_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "message", Class: dispatch.ClassText, Required: true},
			// The caller must name a sending account, but delivery always
			// runs under the configured provider credentials.
			{Name: "username", Class: dispatch.ClassText, Required: true},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			return deps.Comms.SendSMS(ctx,
				args.String("phone_number"),
				args.String("message"))
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "send_ussd",
		Description: "Push a USSD code to a phone number.",
		Sensitive:   true,
		Params: []dispatch.Param{
			{Name: "phone_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "code", Class: dispatch.ClassText, Required: true},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			if err := deps.Comms.SendUSSD(ctx,
				args.String("phone_number"), args.String("code")); err != nil {
				return nil, err
			}
			return map[string]string{"status": "Sent"}, nil
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "send_mobile_data",
		Description: "Send a mobile data bundle to a phone number.",
		Sensitive:   true,
		Params: []dispatch.Param{
			{Name: "phone_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "bundle", Class: dispatch.ClassBundle, Required: true},
			{Name: "provider", Class: dispatch.ClassText, Required: true},
			{Name: "plan", Class: dispatch.ClassPlan, Required: true},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			bundle := args.Bundle("bundle")
			return deps.Comms.SendMobileData(ctx, provider.MobileDataRequest{
				PhoneNumber: args.String("phone_number"),
				Bundle: provider.DataBundle{
					Quantity: bundle.Quantity,
					Unit:     bundle.Unit,
				},
				Validity:    args.String("plan"),
				ProductName: deps.DataProductName,
			})
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "make_voice_call",
		Description: "Initiate a voice call between two numbers.",
		Sensitive:   true,
		Params: []dispatch.Param{
			{Name: "from_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "to_number", Class: dispatch.ClassPhone, Required: true},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			return deps.Comms.MakeVoiceCall(ctx,
				args.String("from_number"),
				args.String("to_number"))
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "make_voice_call_with_text",
		Description: "Initiate a voice call that reads a message aloud with text-to-speech.",
		Sensitive:   true,
		Params: []dispatch.Param{
			{Name: "from_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "to_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "message", Class: dispatch.ClassText, Required: true},
			{Name: "voice_type", Class: dispatch.ClassVoice, Default: "woman"},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			return deps.Comms.MakeVoiceCallWithText(ctx,
				args.String("from_number"),
				args.String("to_number"),
				args.String("message"),
				args.String("voice_type"))
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "make_voice_call_and_play_audio",
		Description: "Initiate a voice call that plays an audio file from a URL.",
		Sensitive:   true,
		Params: []dispatch.Param{
			{Name: "from_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "to_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "audio_url", Class: dispatch.ClassURL, Required: true},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			return deps.Comms.MakeVoiceCallAndPlayAudio(ctx,
				args.String("from_number"),
				args.String("to_number"),
				args.String("audio_url"))
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "send_whatsapp_message",
		Description: "Send a WhatsApp message, either plain text or media with an optional caption.",
		Sensitive:   true,
		Params: []dispatch.Param{
			{Name: "wa_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "phone_number", Class: dispatch.ClassPhone, Required: true},
			{Name: "message", Class: dispatch.ClassText},
			{Name: "media_type", Class: dispatch.ClassMedia},
			{Name: "url", Class: dispatch.ClassURL},
			{Name: "caption", Class: dispatch.ClassText},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			hasText := args.Has("message")
			hasMedia := args.Has("media_type") && args.Has("url")
			if !hasText && !hasMedia {
				return nil, fmt.Errorf("either message or media_type and url must be provided")
			}
			if args.Has("media_type") != args.Has("url") {
				return nil, fmt.Errorf("media_type and url must be provided together")
			}
			return deps.Comms.SendWhatsApp(ctx, provider.WhatsAppRequest{
				WANumber:    args.String("wa_number"),
				PhoneNumber: args.String("phone_number"),
				Message:     args.String("message"),
				MediaType:   args.String("media_type"),
				URL:         args.String("url"),
				Caption:     args.String("caption"),
			})
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "get_wallet_balance",
		Description: "Fetch the account's wallet balance.",
		Handler: dispatch.HandlerFunc(func(ctx context.Context, _ *dispatch.Validated) (any, error) {
			balance, err := deps.Comms.WalletBalance(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]string{"balance": balance}, nil
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "get_application_balance",
		Description: "Fetch the application balance from the user data endpoint.",
		Params: []dispatch.Param{
			{Name: "sandbox", Class: dispatch.ClassBool, Default: false},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			balance, err := deps.Comms.ApplicationBalance(ctx, args.Bool("sandbox"))
			if err != nil {
				return nil, err
			}
			return map[string]string{"balance": balance}, nil
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "search_news",
		Description: "Search recent news articles for a query.",
		Params: []dispatch.Param{
			{Name: "query", Class: dispatch.ClassText, Required: true},
			{Name: "max_results", Class: dispatch.ClassInt, Default: 5},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			if deps.News == nil {
				return nil, errNewsUnconfigured
			}
			articles, err := deps.News.Search(ctx, args.String("query"), args.Int("max_results"))
			if err != nil {
				return nil, err
			}
			return map[string]any{"articles": articles}, nil
		}),
	})

	r.MustRegister(dispatch.Operation{
		Name:        "translate_text",
		Description: "Translate text to French, Arabic or Portuguese.",
		Params: []dispatch.Param{
			{Name: "text", Class: dispatch.ClassText, Required: true},
			{Name: "target_language", Class: dispatch.ClassLanguage, Required: true},
		},
		Handler: dispatch.HandlerFunc(func(ctx context.Context, args *dispatch.Validated) (any, error) {
			if deps.Translator == nil {
				return nil, errTranslateUnconfigured
			}
			translated, err := deps.Translator.Translate(ctx,
				args.String("text"), args.String("target_language"))
			if err != nil {
				return nil, err
			}
			return map[string]string{"translated_text": translated}, nil
		}),
	})

	return r
}
