package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// TerminalI is the application core behind the HTTP API.
type TerminalI interface {
	// Start runs the background status poller for pending payments.
	Start()
	// Stop terminates the background poller.
	Stop()

	// VerifyCredentials runs the three-step verification pipeline and
	// persists the credential set only if every step passes. The returned
	// result is also the UI-facing outcome on failure.
	VerifyCredentials(ctx context.Context, creds *Credentials) (*ValidationResult, error)
	// VerificationState exposes the state machine of the last run.
	VerificationState() VerificationState
	// Logout destroys the persisted credential set.
	Logout() error

	CreatePayment(ctx context.Context, amount decimal.Decimal, description string, items []TransactionItem) (*Transaction, error)
	RefreshPayment(ctx context.Context, id string) (*Transaction, error)
	RefreshHistory(ctx context.Context, dateFrom, dateTo string) (int, error)
	ListTransactions() ([]*Transaction, error)

	AccountBalance(ctx context.Context) (*Balance, error)
	CustomerBalance(ctx context.Context) (*Balance, error)

	RequestWithdrawal(ctx context.Context, amount decimal.Decimal, comment string) (*Withdrawal, error)

	ListProducts() ([]*Product, error)
	AddProduct(*Product) error
	UpdateProduct(*Product) error
	DeleteProduct(id string) error
	ImportProducts(blob string) (*ImportResult, error)
}

// WithdrawalNotifier relays a withdrawal request to the operator. An
// error means no configured channel accepted the message.
type WithdrawalNotifier interface {
	SendWithdrawalRequest(w *Withdrawal, merchantName string) error
}
