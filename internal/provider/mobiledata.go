package provider

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// DataBundle is a quantity of mobile data in MB or GB.
type DataBundle struct {
	Quantity int
	Unit     string // "MB" or "GB"
}

// MobileDataRequest describes a data bundle disbursement.
type MobileDataRequest struct {
	PhoneNumber string
	Bundle      DataBundle
	Validity    string // "Day", "Week" or "Month"
	ProductName string
}

// MobileDataResponse is the provider's reply to a data bundle request.
type MobileDataResponse struct {
	Entries []struct {
		PhoneNumber   string `json:"phoneNumber"`
		Provider      string `json:"provider"`
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
		Value         string `json:"value"`
	} `json:"entries"`
	ErrorMessage string `json:"errorMessage"`
}

// SendMobileData sends a data bundle to a phone number. Each recipient
// carries its request fields duplicated as metadata, which the provider
// echoes back in delivery notifications.
func (c *Client) SendMobileData(ctx context.Context, req MobileDataRequest) (*MobileDataResponse, error) {
	recipient := map[string]any{
		"phoneNumber": req.PhoneNumber,
		"quantity":    req.Bundle.Quantity,
		"unit":        req.Bundle.Unit,
		"validity":    req.Validity,
		"metadata": map[string]string{
			"phoneNumber": req.PhoneNumber,
			"product":     req.ProductName,
			"quantity":    strconv.Itoa(req.Bundle.Quantity),
			"unit":        req.Bundle.Unit,
			"validity":    req.Validity,
		},
	}

	payload := map[string]any{
		"username":    c.cfg.Username,
		"productName": req.ProductName,
		"recipients":  []any{recipient},
	}

	c.logger.Info("sending mobile data",
		zap.String("phone_number", maskPhone(req.PhoneNumber)),
		zap.Int("quantity", req.Bundle.Quantity),
		zap.String("unit", req.Bundle.Unit),
		zap.String("validity", req.Validity),
	)

	var out MobileDataResponse
	if err := c.postJSON(ctx, c.bundlesHost+"/mobile/data/request", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
