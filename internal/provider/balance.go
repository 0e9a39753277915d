package provider

import (
	"context"
	"net/http"
	"net/url"

	"github.com/openkassa/kassaterm/internal/models"
)

// AccountBalance fetches the balance of a currency account.
func (c *Client) AccountBalance(ctx context.Context, auth models.ProviderAuth, accountNumber string) (*models.Balance, error) {
	headers := map[string]string{
		headerAccessKey:   auth.AccessKey,
		headerAccountGUID: auth.AccountGUID,
	}
	var env balanceEnvelope
	if err := c.do(ctx, http.MethodGet, "/account/balance/"+url.PathEscape(accountNumber), headers, nil, &env); err != nil {
		return nil, err
	}
	return env.normalize(), nil
}

// CustomerBalance fetches the balance of a customer by client id.
func (c *Client) CustomerBalance(ctx context.Context, accessKey, clientID string) (*models.Balance, error) {
	headers := map[string]string{headerAccessKey: accessKey}
	var env balanceEnvelope
	if err := c.do(ctx, http.MethodGet, "/customer/balance/"+url.PathEscape(clientID), headers, nil, &env); err != nil {
		return nil, err
	}
	return env.normalize(), nil
}
