package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// Balance is the canonical balance DTO. The remote API reports balances
// either flat or wrapped in a value envelope; the provider client
// normalizes both shapes into this one before anything else sees them.
type Balance struct {
	Balance       decimal.Decimal `json:"balance"`
	LockedBalance decimal.Decimal `json:"locked_balance"`
	Currency      string          `json:"currency,omitempty"`
	AccountName   string          `json:"account_name,omitempty"`
}

// ProviderAuth carries the headers required by account-scoped endpoints.
type ProviderAuth struct {
	AccessKey   string
	AccountGUID string
}

// PrepareRequest is the body of the payment-preparation endpoint. The
// same endpoint serves both real payment creation and the harmless
// verification probe.
type PrepareRequest struct {
	Currency    int             `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OrderID     string          `json:"orderId"`
	CallbackURL string          `json:"callbackUrl"`
	ReturnURL   string          `json:"returnUrl"`
}

// PrepareResult is the normalized payment-preparation response.
type PrepareResult struct {
	// OperationID is the provider-assigned payment id.
	OperationID string `json:"operation_id"`
	// PaymentURL is the QR/payment link for the customer.
	PaymentURL string `json:"payment_url"`
}

// HistoryQuery selects a slice of the payment history report.
type HistoryQuery struct {
	AccountID string
	DateFrom  string
	DateTo    string
	Currency  string
}

// PaymentProvider is the client for the remote payment-processing API.
type PaymentProvider interface {
	// PreparePayment creates (or probes) a payment. HTTP 200 with the
	// given auth is what verification step 1 relies on.
	PreparePayment(ctx context.Context, auth ProviderAuth, req *PrepareRequest) (*PrepareResult, error)

	// AccountBalance fetches the balance of a currency account.
	AccountBalance(ctx context.Context, auth ProviderAuth, accountNumber string) (*Balance, error)

	// CustomerBalance fetches the balance of a customer by client id.
	CustomerBalance(ctx context.Context, accessKey, clientID string) (*Balance, error)

	// PaymentByID fetches a single payment record for status checks.
	PaymentByID(ctx context.Context, accessKey, id string) (*PaymentRecord, error)

	// PaymentHistory fetches the payment history report.
	PaymentHistory(ctx context.Context, accessKey, customerID string, q HistoryQuery) ([]PaymentHistoryItem, error)
}
