package reconcile

import (
	"time"

	"github.com/openkassa/kassaterm/internal/models"
)

// Merge reconciles a freshly fetched transaction with the previously
// known record of the same id. The incoming record wins, except that a
// field known on the existing record never regresses to empty because a
// later payload omitted it. The payment URL is the canonical example: it
// is only reported at creation time and must survive status-only
// refreshes. A terminal status likewise never regresses to pending.
//
// Merge is pure and storage-agnostic; the repository applies it under a
// per-id write lock.
func Merge(existing *models.Transaction, incoming models.Transaction) models.Transaction {
	if existing == nil {
		return incoming
	}

	out := incoming
	out.PaymentURL = keepNonEmpty(incoming.PaymentURL, existing.PaymentURL)
	out.CustomerInfo = keepNonEmpty(incoming.CustomerInfo, existing.CustomerInfo)
	out.MerchantName = keepNonEmpty(incoming.MerchantName, existing.MerchantName)
	out.Tag = keepNonEmpty(incoming.Tag, existing.Tag)
	out.CreatedAt = keepNonEmpty(incoming.CreatedAt, existing.CreatedAt)
	out.FinishedAt = keepNonEmpty(incoming.FinishedAt, existing.FinishedAt)
	if out.Commission.IsZero() {
		out.Commission = existing.Commission
	}
	if len(out.Items) == 0 {
		out.Items = existing.Items
	}
	if existing.Status.Terminal() && out.Status == models.StatusPending {
		out.Status = existing.Status
	}
	return out
}

func keepNonEmpty(incoming, existing string) string {
	if incoming == "" {
		return existing
	}
	return incoming
}

// FromHistoryItem converts the history/report wire shape into the
// canonical transaction, mapping the numeric status code.
func FromHistoryItem(item models.PaymentHistoryItem) models.Transaction {
	return models.Transaction{
		ID:           item.ID,
		Amount:       item.Amount,
		Status:       StatusFromCode(item.PaymentStatus),
		CreatedAt:    defaultCreatedAt(item.CreatedAt),
		FinishedAt:   item.FinishedAt,
		CustomerInfo: item.Comment,
		MerchantName: item.AccountToName,
		Tag:          item.Tag,
		Commission:   item.TotalCommission,
	}
}

// FromPaymentRecord converts the single-payment wire shape into the
// canonical transaction, mapping the string status.
func FromPaymentRecord(rec models.PaymentRecord) models.Transaction {
	return models.Transaction{
		ID:           rec.ID,
		Amount:       rec.Amount,
		Status:       StatusFromString(rec.Status),
		CreatedAt:    defaultCreatedAt(rec.CreatedAt),
		FinishedAt:   rec.FinishedAt,
		CustomerInfo: rec.Comment,
		MerchantName: rec.AccountToName,
		Tag:          rec.Tag,
		Commission:   rec.TotalCommission,
		PaymentURL:   rec.PaymentURL,
	}
}

func defaultCreatedAt(createdAt string) string {
	if createdAt == "" {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return createdAt
}
