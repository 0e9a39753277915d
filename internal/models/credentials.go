package models

// Credentials is the merchant credential set for the remote payment API.
// It is persisted only after all three remote verification steps succeed
// and destroyed on logout.
type Credentials struct {
	ID int64 `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	// AccessKey is the opaque credential string (GUID) authorizing access
	// to the merchant's account.
	AccessKey string `json:"access_key" gorm:"column:access_key;not null"`
	// CurrencyCode is the numeric ISO currency code, e.g. "643".
	CurrencyCode string `json:"currency_code" gorm:"column:currency_code;not null"`
	// AccountNumber is the 5-8 digit currency account number.
	AccountNumber string `json:"account_number" gorm:"column:account_number;not null"`
	// ClientID is the 5-8 digit customer identifier.
	ClientID string `json:"client_id" gorm:"column:client_id;not null"`
	// AccountGUID is the identifier of the specific currency account.
	AccountGUID string `json:"account_guid" gorm:"column:account_guid;not null"`
	// MerchantName is an optional display name, at most 50 characters.
	MerchantName string `json:"merchant_name" gorm:"column:merchant_name"`
	// ClientSecret is optional and unused by the verification pipeline.
	ClientSecret string `json:"client_secret" gorm:"column:client_secret"`
}
