package models

type Repository interface {
	// Credentials: a single row, present only after full verification.
	GetCredentials() (*Credentials, error)
	SaveCredentials(*Credentials) error
	DeleteCredentials() error

	// Transactions: keyed by provider id, at most one live record per id.
	// UpsertTransaction applies the reconciliation merge policy and
	// serializes writes per id.
	GetTransaction(id string) (*Transaction, error)
	UpsertTransaction(incoming Transaction) (*Transaction, error)
	ListTransactions() ([]*Transaction, error)
	ListPendingTransactions() ([]*Transaction, error)

	// Products: case-insensitive name uniqueness for import matching.
	ListProducts() ([]*Product, error)
	GetProductByName(name string) (*Product, error)
	CreateProduct(*Product) error
	UpdateProduct(*Product) error
	DeleteProduct(id string) error
	ApplyImport(inserts []*Product, updates []*Product) error

	AddWithdrawal(*Withdrawal) error
	ListWithdrawals() ([]*Withdrawal, error)
}
