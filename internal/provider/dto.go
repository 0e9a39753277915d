package provider

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/openkassa/kassaterm/internal/models"
)

// flexString tolerates a wire field that arrives either as a JSON string
// or as a bare number, which the remote API does for currency codes.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(data)
	return nil
}

// balanceBody is the flat balance shape. The same fields may also arrive
// wrapped in a value envelope; balanceEnvelope handles both.
type balanceBody struct {
	Balance       decimal.Decimal `json:"balance"`
	LockedBalance decimal.Decimal `json:"lockedBalance"`
	Currency      flexString      `json:"currency"`
	AccountName   string          `json:"accountName"`
}

type balanceEnvelope struct {
	balanceBody
	Value *balanceBody `json:"value"`
}

// normalize collapses the dual-shape response into the canonical DTO,
// value-wrapped taking precedence over the flat fallback.
func (e *balanceEnvelope) normalize() *models.Balance {
	body := e.balanceBody
	if e.Value != nil {
		body = *e.Value
	}
	return &models.Balance{
		Balance:       body.Balance,
		LockedBalance: body.LockedBalance,
		Currency:      string(body.Currency),
		AccountName:   body.AccountName,
	}
}

// prepareBody is the payment-preparation response. Older deployments of
// the API report id/paymentUrl, newer ones operationId/paymentLink.
type prepareBody struct {
	OperationID string `json:"operationId"`
	ID          string `json:"id"`
	PaymentLink string `json:"paymentLink"`
	PaymentURL  string `json:"paymentUrl"`
}

type prepareEnvelope struct {
	prepareBody
	Value *prepareBody `json:"value"`
}

func (e *prepareEnvelope) normalize() *models.PrepareResult {
	body := e.prepareBody
	if e.Value != nil {
		body = *e.Value
	}
	result := &models.PrepareResult{OperationID: body.OperationID, PaymentURL: body.PaymentLink}
	if result.OperationID == "" {
		result.OperationID = body.ID
	}
	if result.PaymentURL == "" {
		result.PaymentURL = body.PaymentURL
	}
	return result
}

type paymentEnvelope struct {
	models.PaymentRecord
	Value *models.PaymentRecord `json:"value"`
}

func (e *paymentEnvelope) normalize() *models.PaymentRecord {
	if e.Value != nil {
		return e.Value
	}
	rec := e.PaymentRecord
	return &rec
}

type historyResponse struct {
	Value struct {
		Count int                         `json:"count"`
		Items []models.PaymentHistoryItem `json:"items"`
	} `json:"value"`
	IsSuccess bool `json:"isSuccess"`
}
