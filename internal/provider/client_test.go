package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkassa/kassaterm/internal/models"
	"github.com/openkassa/kassaterm/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	log, err := logger.NewLogger(true)
	require.NoError(t, err)
	return NewClient(server.URL, log)
}

func TestAccountBalanceDualShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"flat", `{"balance": 500}`},
		{"value wrapped", `{"value": {"balance": 500, "lockedBalance": 20, "currency": 643, "accountName": "Main"}}`},
		{"wrapped takes precedence", `{"balance": 1, "value": {"balance": 500}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/account/balance/14744", r.URL.Path)
				assert.Equal(t, "key-1", r.Header.Get("accessKey"))
				assert.Equal(t, "guid-1", r.Header.Get("accountIdGuid"))
				w.Write([]byte(tt.body))
			})

			balance, err := client.AccountBalance(context.Background(), models.ProviderAuth{AccessKey: "key-1", AccountGUID: "guid-1"}, "14744")

			require.NoError(t, err)
			assert.True(t, balance.Balance.Equal(decimal.NewFromInt(500)))
		})
	}
}

func TestCustomerBalanceNumericCurrencyTolerated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customer/balance/308156", r.URL.Path)
		w.Write([]byte(`{"value": {"balance": 120.5, "currency": "643"}}`))
	})

	balance, err := client.CustomerBalance(context.Background(), "key-1", "308156")

	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("120.5")))
	assert.Equal(t, "643", balance.Currency)
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"message field", `{"message": "invalid access key"}`, "invalid access key"},
		{"title fallback", `{"title": "Unauthorized"}`, "Unauthorized"},
		{"raw text fallback", `upstream exploded`, "upstream exploded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			})

			_, err := client.PaymentByID(context.Background(), "key-1", "42")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.body, apiErr.RawBody)
		})
	}
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	log, err := logger.NewLogger(true)
	require.NoError(t, err)
	client := NewClient("http://127.0.0.1:1", log)

	_, err = client.PaymentByID(context.Background(), "key-1", "42")

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestPaymentByIDDualShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/report/payment/42", r.URL.Path)
		w.Write([]byte(`{"value": {"id": "42", "amount": 250.5, "status": "completed", "tag": "sbp-0042"}}`))
	})

	rec, err := client.PaymentByID(context.Background(), "key-1", "42")

	require.NoError(t, err)
	assert.Equal(t, "42", rec.ID)
	assert.Equal(t, "completed", rec.Status)
	assert.Equal(t, "sbp-0042", rec.Tag)
}

func TestPaymentHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/report/payments", r.URL.Path)
		assert.Equal(t, "guid-1", r.URL.Query().Get("AccountId"))
		assert.Equal(t, "2026-02-01", r.URL.Query().Get("DateFrom"))
		assert.Equal(t, "key-1", r.Header.Get("accessKey"))
		assert.Equal(t, "308156", r.Header.Get("customerId"))
		w.Write([]byte(`{"isSuccess": true, "value": {"count": 1, "items": [{"id": "42", "amount": 250.5, "paymentStatus": 3}]}}`))
	})

	items, err := client.PaymentHistory(context.Background(), "key-1", "308156", models.HistoryQuery{
		AccountID: "guid-1",
		DateFrom:  "2026-02-01",
		DateTo:    "2026-02-28",
		Currency:  "643",
	})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "42", items[0].ID)
	assert.Equal(t, 3, items[0].PaymentStatus)
}

func TestPaymentHistoryNotSuccessful(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isSuccess": false, "value": {"count": 0, "items": []}}`))
	})

	_, err := client.PaymentHistory(context.Background(), "key-1", "308156", models.HistoryQuery{})

	assert.Error(t, err)
}

func TestPreparePayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments/external/incoming/card/prepare", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("accessKey"))
		assert.Equal(t, "guid-1", r.Header.Get("accountIdGuid"))
		w.Write([]byte(`{"value": {"operationId": "op-7", "paymentLink": "https://pay/op-7"}}`))
	})

	result, err := client.PreparePayment(context.Background(), models.ProviderAuth{AccessKey: "key-1", AccountGUID: "guid-1"}, &models.PrepareRequest{
		Currency:    643,
		Amount:      decimal.RequireFromString("150"),
		Description: "order 17",
		OrderID:     "order-17",
	})

	require.NoError(t, err)
	assert.Equal(t, "op-7", result.OperationID)
	assert.Equal(t, "https://pay/op-7", result.PaymentURL)
}

func TestPreparePaymentLegacyFieldNames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "op-7", "paymentUrl": "https://pay/op-7"}`))
	})

	result, err := client.PreparePayment(context.Background(), models.ProviderAuth{}, &models.PrepareRequest{})

	require.NoError(t, err)
	assert.Equal(t, "op-7", result.OperationID)
	assert.Equal(t, "https://pay/op-7", result.PaymentURL)
}
