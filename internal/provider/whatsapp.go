package provider

import (
	"context"

	"go.uber.org/zap"
)

// WhatsAppRequest describes an outbound WhatsApp message. Either Message
// (plain text) or MediaType+URL (media with optional Caption) must be
// set.
type WhatsAppRequest struct {
	WANumber    string // the sending WhatsApp business number
	PhoneNumber string
	Message     string
	MediaType   string // "Image", "Video", "Audio" or "Voice"
	URL         string
	Caption     string
}

// WhatsAppResponse is the provider's reply to a WhatsApp send.
type WhatsAppResponse struct {
	MessageID  string `json:"messageId"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
}

// SendWhatsApp delivers a WhatsApp message. Only the body fields the
// caller set are included in the payload.
func (c *Client) SendWhatsApp(ctx context.Context, req WhatsAppRequest) (*WhatsAppResponse, error) {
	body := map[string]string{}
	if req.Message != "" {
		body["message"] = req.Message
	}
	if req.MediaType != "" {
		body["mediaType"] = req.MediaType
	}
	if req.URL != "" {
		body["url"] = req.URL
	}
	if req.Caption != "" {
		body["caption"] = req.Caption
	}

	payload := map[string]any{
		"username":    c.cfg.Username,
		"waNumber":    req.WANumber,
		"phoneNumber": req.PhoneNumber,
		"body":        body,
	}

	c.logger.Info("sending WhatsApp message",
		zap.String("phone_number", maskPhone(req.PhoneNumber)),
		zap.String("wa_number", maskPhone(req.WANumber)),
		zap.String("media_type", req.MediaType),
	)

	var out WhatsAppResponse
	if err := c.postJSON(ctx, c.chatHost+"/whatsapp/message/send", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
