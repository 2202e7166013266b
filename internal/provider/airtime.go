package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// AirtimeResponse is the provider's reply to an airtime disbursement.
type AirtimeResponse struct {
	ErrorMessage string            `json:"errorMessage"`
	NumSent      int               `json:"numSent"`
	TotalAmount  string            `json:"totalAmount"`
	Responses    []AirtimeReceiver `json:"responses"`
}

type AirtimeReceiver struct {
	PhoneNumber  string `json:"phoneNumber"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
	RequestID    string `json:"requestId"`
	ErrorMessage string `json:"errorMessage"`
}

// SendAirtime tops up a single phone number. Amount is formatted as
// "<currency> <value>", e.g. "KES 10".
func (c *Client) SendAirtime(ctx context.Context, phoneNumber, currencyCode, amount string) (*AirtimeResponse, error) {
	recipients, err := json.Marshal([]map[string]string{{
		"phoneNumber": phoneNumber,
		"amount":      fmt.Sprintf("%s %s", currencyCode, amount),
	}})
	if err != nil {
		return nil, fmt.Errorf("provider: encode recipients: %w", err)
	}

	form := url.Values{}
	form.Set("username", c.cfg.Username)
	form.Set("recipients", string(recipients))

	c.logger.Info("sending airtime",
		zap.String("phone_number", maskPhone(phoneNumber)),
		zap.String("amount", amount),
		zap.String("currency_code", currencyCode),
	)

	var out AirtimeResponse
	if err := c.postForm(ctx, c.apiHost+"/version1/airtime/send", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
