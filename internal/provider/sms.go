package provider

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"
)

// SMSResponse is the provider's reply to an outbound message.
type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number     string `json:"number"`
			Status     string `json:"status"`
			StatusCode int    `json:"statusCode"`
			MessageID  string `json:"messageId"`
			Cost       string `json:"cost"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SendSMS delivers a text message to a single recipient.
func (c *Client) SendSMS(ctx context.Context, phoneNumber, message string) (*SMSResponse, error) {
	form := url.Values{}
	form.Set("username", c.cfg.Username)
	form.Set("to", phoneNumber)
	form.Set("message", message)

	c.logger.Info("sending message",
		zap.String("phone_number", maskPhone(phoneNumber)),
		zap.Int("message_length", len(message)),
	)

	var out SMSResponse
	if err := c.postForm(ctx, c.apiHost+"/version1/messaging", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ErrUSSDUnsupported is returned for outgoing USSD pushes: the provider
// handles USSD as inbound interactive sessions, not application-initiated
// code delivery.
var ErrUSSDUnsupported = errors.New(
	"USSD service not available for sending outgoing codes; USSD handles inbound interactive sessions")

// SendUSSD would push a USSD code to a handset. The provider does not
// offer this operation, so it always fails with ErrUSSDUnsupported.
func (c *Client) SendUSSD(_ context.Context, phoneNumber, code string) error {
	c.logger.Warn("outgoing USSD requested but unsupported",
		zap.String("phone_number", maskPhone(phoneNumber)),
		zap.String("code", code),
	)
	return ErrUSSDUnsupported
}
