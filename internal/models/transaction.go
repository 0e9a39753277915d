package models

import "github.com/shopspring/decimal"

// Status is the unified local payment status. Every provider-reported
// status, numeric or string, collapses into one of these three values.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Transaction is the canonical local representation of a payment.
// The provider reports payments in two different wire shapes
// (PaymentHistoryItem and PaymentRecord); both are converted into this
// shape before touching the store.
type Transaction struct {
	// ID is the provider-assigned payment identifier.
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// Amount is the payment amount.
	Amount decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric"`
	// Status is the unified three-state status.
	Status Status `json:"status" gorm:"column:status;index"`
	// CreatedAt is the ISO timestamp the payment was created at.
	CreatedAt string `json:"created_at" gorm:"column:created_at;index"`
	// FinishedAt is the ISO timestamp the payment reached a terminal state.
	FinishedAt string `json:"finished_at" gorm:"column:finished_at"`
	// CustomerInfo is the free-form comment/customer field from the provider.
	CustomerInfo string `json:"customer_info" gorm:"column:customer_info"`
	// MerchantName is the receiving account display name.
	MerchantName string `json:"merchant_name" gorm:"column:merchant_name"`
	// Tag is the SBP/order correlation id assigned by the provider.
	Tag string `json:"tag" gorm:"column:tag"`
	// Commission is the total provider commission.
	Commission decimal.Decimal `json:"commission" gorm:"column:commission;type:numeric"`
	// PaymentURL is the QR/payment link. Only reported at creation time;
	// later status refreshes omit it, so the store must never lose it.
	PaymentURL string `json:"payment_url" gorm:"column:payment_url"`
	// Items is the optional product line items sold in this payment.
	Items []TransactionItem `json:"items,omitempty" gorm:"column:items;serializer:json"`
}

// TransactionItem is a single product line inside a payment.
type TransactionItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// PaymentHistoryItem is the wire shape of one item from the payment
// history/report endpoint. Its status is a numeric code.
type PaymentHistoryItem struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentStatus   int             `json:"paymentStatus"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
	Comment         string          `json:"comment"`
	AccountToName   string          `json:"accountToName"`
	Tag             string          `json:"tag"`
	CreatedAt       string          `json:"createdAt"`
	FinishedAt      string          `json:"finishedAt"`
}

// PaymentRecord is the wire shape of the single-payment report endpoint.
// Unlike PaymentHistoryItem its status is a string.
type PaymentRecord struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
	Comment         string          `json:"comment"`
	AccountToName   string          `json:"accountToName"`
	Tag             string          `json:"tag"`
	CreatedAt       string          `json:"createdAt"`
	FinishedAt      string          `json:"finishedAt"`
	PaymentURL      string          `json:"paymentUrl"`
}
