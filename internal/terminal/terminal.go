package terminal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openkassa/kassaterm/internal/catalog"
	"github.com/openkassa/kassaterm/internal/config"
	"github.com/openkassa/kassaterm/internal/models"
	"github.com/openkassa/kassaterm/internal/reconcile"
	"github.com/openkassa/kassaterm/internal/verify"
	"github.com/openkassa/kassaterm/pkg/logger"
)

// ErrNotVerified is returned by operations that need a verified
// credential set before any remote call can be made.
var ErrNotVerified = errors.New("no verified credentials, complete setup first")

// Terminal is the application core. It owns the verification pipeline,
// payment creation and reconciliation, the product catalog and the
// withdrawal relay, and runs the background status poller for pending
// payments.
type Terminal struct {
	logger *logger.Logger
	config *config.Config

	repo     models.Repository
	provider models.PaymentProvider
	verifier *verify.Verifier
	notifier models.WithdrawalNotifier

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewTerminal creates a new Terminal instance
func NewTerminal(
	repo models.Repository,
	provider models.PaymentProvider,
	verifier *verify.Verifier,
	notifier models.WithdrawalNotifier,
	logger *logger.Logger,
	config *config.Config,
) models.TerminalI {
	return &Terminal{
		repo:     repo,
		provider: provider,
		verifier: verifier,
		notifier: notifier,
		logger:   logger,
		config:   config,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the background poller that re-checks the status of pending
// payments. Each tick is idempotent: overlapping refreshes of the same
// payment converge because upserts are serialized per id and the merge
// never regresses known fields.
func (t *Terminal) Start() {
	go func() {
		defer close(t.doneChan)

		ticker := time.NewTicker(t.config.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.pollPending()
			case <-t.stopChan:
				return
			}
		}
	}()
}

// Stop terminates the background poller.
func (t *Terminal) Stop() {
	close(t.stopChan)
	<-t.doneChan
}

func (t *Terminal) pollPending() {
	pending, err := t.repo.ListPendingTransactions()
	if err != nil {
		t.logger.Error("Failed to list pending transactions: ", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	t.logger.Debug("Polling pending payments ", "count ", len(pending))
	for _, transaction := range pending {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		_, err := t.RefreshPayment(ctx, transaction.ID)
		cancel()
		if err != nil {
			// No automatic retry: the next tick picks the payment up again.
			t.logger.Error("Failed to refresh payment ", "id ", transaction.ID, " error ", err)
		}
	}
}

// VerifyCredentials runs the three-step pipeline and persists the
// credential set only when every step passes.
func (t *Terminal) VerifyCredentials(ctx context.Context, creds *models.Credentials) (*models.ValidationResult, error) {
	result := t.verifier.Run(ctx, creds)
	if !result.Success {
		return result, nil
	}

	if err := t.repo.SaveCredentials(creds); err != nil {
		return nil, fmt.Errorf("failed to persist verified credentials: %w", err)
	}
	t.logger.Info("Credentials verified and saved ", "merchant ", creds.MerchantName)
	return result, nil
}

// VerificationState exposes the verification state machine for the UI.
func (t *Terminal) VerificationState() models.VerificationState {
	return t.verifier.State()
}

// Logout destroys the persisted credential set.
func (t *Terminal) Logout() error {
	return t.repo.DeleteCredentials()
}

func (t *Terminal) credentials() (*models.Credentials, error) {
	creds, err := t.repo.GetCredentials()
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, ErrNotVerified
	}
	return creds, nil
}

// CreatePayment creates a payment at the provider and stores the
// resulting pending transaction, including its payment URL.
func (t *Terminal) CreatePayment(ctx context.Context, amount decimal.Decimal, description string, items []models.TransactionItem) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	creds, err := t.credentials()
	if err != nil {
		return nil, err
	}

	currency, err := strconv.Atoi(creds.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid stored currency code %q: %w", creds.CurrencyCode, err)
	}

	result, err := t.provider.PreparePayment(ctx, models.ProviderAuth{AccessKey: creds.AccessKey, AccountGUID: creds.AccountGUID}, &models.PrepareRequest{
		Currency:    currency,
		Amount:      amount,
		Description: description,
		OrderID:     uuid.NewString(),
		CallbackURL: t.config.CallbackURL,
		ReturnURL:   t.config.ReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	transaction := models.Transaction{
		ID:           result.OperationID,
		Amount:       amount,
		Status:       models.StatusPending,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		CustomerInfo: description,
		MerchantName: creds.MerchantName,
		PaymentURL:   result.PaymentURL,
		Items:        items,
	}
	return t.repo.UpsertTransaction(transaction)
}

// RefreshPayment fetches the current provider record of a payment and
// reconciles it into the store.
func (t *Terminal) RefreshPayment(ctx context.Context, id string) (*models.Transaction, error) {
	creds, err := t.credentials()
	if err != nil {
		return nil, err
	}

	record, err := t.provider.PaymentByID(ctx, creds.AccessKey, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment %s: %w", id, err)
	}
	return t.repo.UpsertTransaction(reconcile.FromPaymentRecord(*record))
}

// RefreshHistory fetches the payment history report for the window and
// reconciles every item, returning the number of items processed.
func (t *Terminal) RefreshHistory(ctx context.Context, dateFrom, dateTo string) (int, error) {
	creds, err := t.credentials()
	if err != nil {
		return 0, err
	}

	items, err := t.provider.PaymentHistory(ctx, creds.AccessKey, creds.ClientID, models.HistoryQuery{
		AccountID: creds.AccountGUID,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		Currency:  creds.CurrencyCode,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch payment history: %w", err)
	}

	for _, item := range items {
		if _, err := t.repo.UpsertTransaction(reconcile.FromHistoryItem(item)); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func (t *Terminal) ListTransactions() ([]*models.Transaction, error) {
	return t.repo.ListTransactions()
}

// AccountBalance fetches the currency account balance.
func (t *Terminal) AccountBalance(ctx context.Context) (*models.Balance, error) {
	creds, err := t.credentials()
	if err != nil {
		return nil, err
	}
	return t.provider.AccountBalance(ctx, models.ProviderAuth{AccessKey: creds.AccessKey, AccountGUID: creds.AccountGUID}, creds.AccountNumber)
}

// CustomerBalance fetches the customer balance.
func (t *Terminal) CustomerBalance(ctx context.Context) (*models.Balance, error) {
	creds, err := t.credentials()
	if err != nil {
		return nil, err
	}
	return t.provider.CustomerBalance(ctx, creds.AccessKey, creds.ClientID)
}

// RequestWithdrawal persists a withdrawal request and relays it to the
// operator channels. The service does not move funds itself.
func (t *Terminal) RequestWithdrawal(ctx context.Context, amount decimal.Decimal, comment string) (*models.Withdrawal, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}
	creds, err := t.credentials()
	if err != nil {
		return nil, err
	}

	withdrawal := &models.Withdrawal{
		Amount:        amount,
		AccountNumber: creds.AccountNumber,
		Comment:       comment,
		CreatedAt:     time.Now().Unix(),
	}

	if t.notifier != nil {
		if err := t.notifier.SendWithdrawalRequest(withdrawal, creds.MerchantName); err != nil {
			t.logger.Error("Failed to relay withdrawal request: ", err)
		} else {
			withdrawal.Relayed = true
		}
	}

	if err := t.repo.AddWithdrawal(withdrawal); err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func (t *Terminal) ListProducts() ([]*models.Product, error) {
	return t.repo.ListProducts()
}

func (t *Terminal) AddProduct(product *models.Product) error {
	if product.Name == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if !product.Price.IsPositive() {
		return fmt.Errorf("product price must be positive")
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	existing, err := t.repo.GetProductByName(product.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("product %q already exists", existing.Name)
	}
	return t.repo.CreateProduct(product)
}

func (t *Terminal) UpdateProduct(product *models.Product) error {
	if product.Name == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if !product.Price.IsPositive() {
		return fmt.Errorf("product price must be positive")
	}
	return t.repo.UpdateProduct(product)
}

func (t *Terminal) DeleteProduct(id string) error {
	return t.repo.DeleteProduct(id)
}

// ImportProducts runs a bulk catalog import. Line errors are collected
// in the result; only a blob over the line limit fails the call.
func (t *Terminal) ImportProducts(blob string) (*models.ImportResult, error) {
	existing, err := t.repo.ListProducts()
	if err != nil {
		return nil, err
	}

	plan, err := catalog.PlanImport(blob, existing)
	if err != nil {
		return nil, err
	}

	if err := t.repo.ApplyImport(plan.Inserts, plan.Updates); err != nil {
		return nil, err
	}
	return &plan.Result, nil
}
