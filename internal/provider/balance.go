package provider

import (
	"context"
	"fmt"
	"net/url"
)

// WalletBalance returns the account's wallet balance, e.g. "KES 47.7530".
func (c *Client) WalletBalance(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/query/wallet/balance?username=%s",
		c.bundlesHost, url.QueryEscape(c.cfg.Username))

	var out struct {
		Status  string `json:"status"`
		Balance string `json:"balance"`
	}
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return "", err
	}
	if out.Status != "" && out.Status != "Success" {
		return "", fmt.Errorf("provider: wallet balance query status %q", out.Status)
	}
	return out.Balance, nil
}

// ApplicationBalance returns the application balance from the user data
// endpoint, e.g. "KES 1785.50". sandbox forces the sandbox host for this
// one call regardless of the client's configuration.
func (c *Client) ApplicationBalance(ctx context.Context, sandbox bool) (string, error) {
	host := c.apiHost
	if sandbox && !c.cfg.Sandbox {
		host = sandboxAPIBase
	}
	endpoint := fmt.Sprintf("%s/version1/user?username=%s",
		host, url.QueryEscape(c.cfg.Username))

	var out struct {
		UserData struct {
			Balance string `json:"balance"`
		} `json:"UserData"`
	}
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return "", err
	}
	if out.UserData.Balance == "" {
		return "", fmt.Errorf("provider: user data response has no balance")
	}
	return out.UserData.Balance, nil
}
