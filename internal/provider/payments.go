package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/openkassa/kassaterm/internal/models"
)

// PreparePayment creates a payment (or runs the harmless verification
// probe — same endpoint, same contract) and returns the provider id and
// payment link.
func (c *Client) PreparePayment(ctx context.Context, auth models.ProviderAuth, req *models.PrepareRequest) (*models.PrepareResult, error) {
	headers := map[string]string{
		headerAccessKey:   auth.AccessKey,
		headerAccountGUID: auth.AccountGUID,
	}
	var env prepareEnvelope
	if err := c.do(ctx, http.MethodPost, "/payments/external/incoming/card/prepare", headers, req, &env); err != nil {
		return nil, err
	}
	return env.normalize(), nil
}

// PaymentByID fetches a single payment record from the report endpoint.
func (c *Client) PaymentByID(ctx context.Context, accessKey, id string) (*models.PaymentRecord, error) {
	headers := map[string]string{headerAccessKey: accessKey}
	var env paymentEnvelope
	if err := c.do(ctx, http.MethodGet, "/report/payment/"+url.PathEscape(id), headers, nil, &env); err != nil {
		return nil, err
	}
	return env.normalize(), nil
}

// PaymentHistory fetches the payment history report for the query window.
func (c *Client) PaymentHistory(ctx context.Context, accessKey, customerID string, q models.HistoryQuery) ([]models.PaymentHistoryItem, error) {
	headers := map[string]string{
		headerAccessKey:  accessKey,
		headerCustomerID: customerID,
	}
	params := url.Values{}
	params.Set("AccountId", q.AccountID)
	params.Set("DateFrom", q.DateFrom)
	params.Set("DateTo", q.DateTo)
	params.Set("Currency", q.Currency)

	var resp historyResponse
	if err := c.do(ctx, http.MethodGet, "/report/payments?"+params.Encode(), headers, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.IsSuccess {
		return nil, fmt.Errorf("payment history report was not successful")
	}
	return resp.Value.Items, nil
}
