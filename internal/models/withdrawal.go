package models

import "github.com/shopspring/decimal"

// Withdrawal is a merchant withdrawal request. The service does not move
// funds itself; the request is persisted and relayed to the operator via
// the configured notification channels.
type Withdrawal struct {
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Amount is the requested withdrawal amount.
	Amount decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric"`
	// AccountNumber is the currency account to withdraw from.
	AccountNumber string `json:"account_number" gorm:"column:account_number"`
	// Comment is an optional free-form note from the merchant.
	Comment string `json:"comment,omitempty" gorm:"column:comment"`
	// CreatedAt is the Unix timestamp the request was made.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at;index"`
	// Relayed indicates the request was delivered to at least one channel.
	Relayed bool `json:"relayed" gorm:"column:relayed"`
}
