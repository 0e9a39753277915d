package terminal

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkassa/kassaterm/internal/config"
	"github.com/openkassa/kassaterm/internal/models"
	"github.com/openkassa/kassaterm/internal/reconcile"
	"github.com/openkassa/kassaterm/internal/verify"
	"github.com/openkassa/kassaterm/pkg/logger"
)

// memoryRepo is an in-memory Repository with the same upsert semantics
// as the postgres implementation.
type memoryRepo struct {
	mu           sync.Mutex
	creds        *models.Credentials
	transactions map[string]models.Transaction
	products     map[string]*models.Product
	withdrawals  []*models.Withdrawal
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		transactions: make(map[string]models.Transaction),
		products:     make(map[string]*models.Product),
	}
}

func (m *memoryRepo) GetCredentials() (*models.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

func (m *memoryRepo) SaveCredentials(creds *models.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	return nil
}

func (m *memoryRepo) DeleteCredentials() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = nil
	return nil
}

func (m *memoryRepo) GetTransaction(id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if transaction, ok := m.transactions[id]; ok {
		return &transaction, nil
	}
	return nil, nil
}

func (m *memoryRepo) UpsertTransaction(incoming models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var existing *models.Transaction
	if transaction, ok := m.transactions[incoming.ID]; ok {
		existing = &transaction
	}
	merged := reconcile.Merge(existing, incoming)
	m.transactions[incoming.ID] = merged
	return &merged, nil
}

func (m *memoryRepo) ListTransactions() ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Transaction
	for id := range m.transactions {
		transaction := m.transactions[id]
		out = append(out, &transaction)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *memoryRepo) ListPendingTransactions() ([]*models.Transaction, error) {
	all, _ := m.ListTransactions()
	var out []*models.Transaction
	for _, transaction := range all {
		if transaction.Status == models.StatusPending {
			out = append(out, transaction)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListProducts() ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Product
	for _, product := range m.products {
		out = append(out, product)
	}
	return out, nil
}

func (m *memoryRepo) GetProductByName(name string) (*models.Product, error) {
	products, _ := m.ListProducts()
	for _, product := range products {
		if strings.EqualFold(product.Name, name) {
			return product, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) CreateProduct(product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
	return nil
}

func (m *memoryRepo) UpdateProduct(product *models.Product) error {
	return m.CreateProduct(product)
}

func (m *memoryRepo) DeleteProduct(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *memoryRepo) ApplyImport(inserts []*models.Product, updates []*models.Product) error {
	for _, product := range inserts {
		if err := m.CreateProduct(product); err != nil {
			return err
		}
	}
	for _, product := range updates {
		if err := m.UpdateProduct(product); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryRepo) AddWithdrawal(withdrawal *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	withdrawal.ID = int64(len(m.withdrawals) + 1)
	m.withdrawals = append(m.withdrawals, withdrawal)
	return nil
}

func (m *memoryRepo) ListWithdrawals() ([]*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.withdrawals, nil
}

// stubProvider returns canned responses for the terminal-level tests.
type stubProvider struct {
	prepareResult *models.PrepareResult
	record        *models.PaymentRecord
	history       []models.PaymentHistoryItem
	err           error
}

func (s *stubProvider) PreparePayment(ctx context.Context, auth models.ProviderAuth, req *models.PrepareRequest) (*models.PrepareResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.prepareResult, nil
}

func (s *stubProvider) AccountBalance(ctx context.Context, auth models.ProviderAuth, accountNumber string) (*models.Balance, error) {
	return &models.Balance{Balance: decimal.NewFromInt(500)}, s.err
}

func (s *stubProvider) CustomerBalance(ctx context.Context, accessKey, clientID string) (*models.Balance, error) {
	return &models.Balance{Balance: decimal.NewFromInt(100)}, s.err
}

func (s *stubProvider) PaymentByID(ctx context.Context, accessKey, id string) (*models.PaymentRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func (s *stubProvider) PaymentHistory(ctx context.Context, accessKey, customerID string, q models.HistoryQuery) ([]models.PaymentHistoryItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func newTestTerminal(t *testing.T, repo models.Repository, p models.PaymentProvider) models.TerminalI {
	t.Helper()
	log, err := logger.NewLogger(true)
	require.NoError(t, err)
	cfg := &config.Config{
		ProviderBaseURL: "http://provider",
		PostgresHost:    "localhost",
		PostgresDB:      "test",
		PollInterval:    time.Minute,
	}
	verifier := verify.NewVerifier(p, "", "", log)
	return NewTerminal(repo, p, verifier, nil, log, cfg)
}

func verifiedRepo() *memoryRepo {
	repo := newMemoryRepo()
	repo.creds = &models.Credentials{
		AccessKey:     "0b63c8a8-7a62-4b39-9c2a-1f6f3d5a9a01",
		AccountGUID:   "f1d2a9d0-4c7b-4e8e-8f10-2b9c0d3e4f55",
		CurrencyCode:  "643",
		AccountNumber: "14744",
		ClientID:      "308156",
		MerchantName:  "Coffee Corner",
	}
	return repo
}

func TestCreatePaymentStoresPendingTransaction(t *testing.T) {
	repo := verifiedRepo()
	terminalApp := newTestTerminal(t, repo, &stubProvider{
		prepareResult: &models.PrepareResult{OperationID: "op-7", PaymentURL: "https://pay/op-7"},
	})

	transaction, err := terminalApp.CreatePayment(context.Background(), decimal.NewFromInt(150), "order 17", nil)
	require.NoError(t, err)

	assert.Equal(t, "op-7", transaction.ID)
	assert.Equal(t, models.StatusPending, transaction.Status)
	assert.Equal(t, "https://pay/op-7", transaction.PaymentURL)
	assert.Equal(t, "Coffee Corner", transaction.MerchantName)
	assert.NotEmpty(t, transaction.CreatedAt)

	stored, err := repo.GetTransaction("op-7")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCreatePaymentRequiresVerification(t *testing.T) {
	terminalApp := newTestTerminal(t, newMemoryRepo(), &stubProvider{})

	_, err := terminalApp.CreatePayment(context.Background(), decimal.NewFromInt(150), "", nil)
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	terminalApp := newTestTerminal(t, verifiedRepo(), &stubProvider{})

	_, err := terminalApp.CreatePayment(context.Background(), decimal.Zero, "", nil)
	assert.Error(t, err)
}

func TestRefreshPaymentKeepsPaymentURL(t *testing.T) {
	repo := verifiedRepo()
	stub := &stubProvider{
		prepareResult: &models.PrepareResult{OperationID: "op-7", PaymentURL: "https://pay/op-7"},
		// The status refresh does not re-report the payment URL.
		record: &models.PaymentRecord{ID: "op-7", Status: "completed", Amount: decimal.NewFromInt(150)},
	}
	terminalApp := newTestTerminal(t, repo, stub)

	_, err := terminalApp.CreatePayment(context.Background(), decimal.NewFromInt(150), "order 17", nil)
	require.NoError(t, err)

	refreshed, err := terminalApp.RefreshPayment(context.Background(), "op-7")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, refreshed.Status)
	assert.Equal(t, "https://pay/op-7", refreshed.PaymentURL)
	assert.Equal(t, "Coffee Corner", refreshed.MerchantName)
}

func TestRefreshPaymentIdempotentUpsert(t *testing.T) {
	repo := verifiedRepo()
	stub := &stubProvider{
		record: &models.PaymentRecord{ID: "op-9", Status: "completed", Amount: decimal.NewFromInt(99), CreatedAt: "2026-02-01T09:00:00Z"},
	}
	terminalApp := newTestTerminal(t, repo, stub)

	first, err := terminalApp.RefreshPayment(context.Background(), "op-9")
	require.NoError(t, err)
	second, err := terminalApp.RefreshPayment(context.Background(), "op-9")
	require.NoError(t, err)

	assert.Equal(t, *first, *second)

	transactions, err := terminalApp.ListTransactions()
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
}

func TestRefreshHistoryReconcilesEveryItem(t *testing.T) {
	repo := verifiedRepo()
	stub := &stubProvider{
		history: []models.PaymentHistoryItem{
			{ID: "1", Amount: decimal.NewFromInt(10), PaymentStatus: 3, CreatedAt: "2026-02-01T09:00:00Z"},
			{ID: "2", Amount: decimal.NewFromInt(20), PaymentStatus: 1, CreatedAt: "2026-02-01T10:00:00Z"},
		},
	}
	terminalApp := newTestTerminal(t, repo, stub)

	count, err := terminalApp.RefreshHistory(context.Background(), "2026-02-01", "2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	completed, err := repo.GetTransaction("1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	pending, err := repo.GetTransaction("2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, pending.Status)
}

func TestRefreshHistoryProviderErrorBubbles(t *testing.T) {
	terminalApp := newTestTerminal(t, verifiedRepo(), &stubProvider{err: errors.New("boom")})

	_, err := terminalApp.RefreshHistory(context.Background(), "2026-02-01", "2026-02-28")
	assert.Error(t, err)
}

func TestRequestWithdrawalPersists(t *testing.T) {
	repo := verifiedRepo()
	terminalApp := newTestTerminal(t, repo, &stubProvider{})

	withdrawal, err := terminalApp.RequestWithdrawal(context.Background(), decimal.NewFromInt(1000), "rent")
	require.NoError(t, err)

	assert.Equal(t, "14744", withdrawal.AccountNumber)
	assert.False(t, withdrawal.Relayed)

	withdrawals, err := repo.ListWithdrawals()
	require.NoError(t, err)
	assert.Len(t, withdrawals, 1)
}

func TestImportProducts(t *testing.T) {
	repo := verifiedRepo()
	terminalApp := newTestTerminal(t, repo, &stubProvider{})

	result, err := terminalApp.ImportProducts("Widget, 10\nBadLine\nGadget, -5\nWidget, 15")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Updated)
	assert.Len(t, result.Errors, 2)

	widget, err := repo.GetProductByName("widget")
	require.NoError(t, err)
	require.NotNil(t, widget)
	assert.True(t, widget.Price.Equal(decimal.NewFromInt(15)))
}

func TestAddProductRejectsDuplicateName(t *testing.T) {
	repo := verifiedRepo()
	terminalApp := newTestTerminal(t, repo, &stubProvider{})

	require.NoError(t, terminalApp.AddProduct(&models.Product{Name: "Widget", Price: decimal.NewFromInt(10)}))
	err := terminalApp.AddProduct(&models.Product{Name: "widget", Price: decimal.NewFromInt(12)})
	assert.Error(t, err)
}

func TestLogoutDestroysCredentials(t *testing.T) {
	repo := verifiedRepo()
	terminalApp := newTestTerminal(t, repo, &stubProvider{})

	require.NoError(t, terminalApp.Logout())

	creds, err := repo.GetCredentials()
	require.NoError(t, err)
	assert.Nil(t, creds)
}
