package reconcile

import "github.com/openkassa/kassaterm/internal/models"

// Numeric payment status codes used by the history/report endpoint.
const (
	codeFailed    = 2
	codeCompleted = 3
)

// StatusFromCode maps the numeric paymentStatus of a history item to the
// unified status. Only 3 means completed and only 2 means failed; every
// other code, known or not, is treated as pending. Callers must not treat
// unmapped codes as errors.
func StatusFromCode(code int) models.Status {
	switch code {
	case codeCompleted:
		return models.StatusCompleted
	case codeFailed:
		return models.StatusFailed
	default:
		return models.StatusPending
	}
}

// StatusFromString maps the string status of a single payment record to
// the unified status, with pending as the fallback for anything
// unrecognized.
func StatusFromString(status string) models.Status {
	switch status {
	case string(models.StatusCompleted):
		return models.StatusCompleted
	case string(models.StatusFailed):
		return models.StatusFailed
	default:
		return models.StatusPending
	}
}
