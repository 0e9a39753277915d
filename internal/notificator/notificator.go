package notificator

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/openkassa/kassaterm/internal/models"
	"github.com/openkassa/kassaterm/pkg/logger"
)

// Notificator relays merchant withdrawal requests to the operator over
// the configured channels. The service never moves funds itself; the
// relay message is the hand-off.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator

	withdrawalEmail string
}

var _ models.WithdrawalNotifier = (*Notificator)(nil)

func NewNotificator(logger *logger.Logger, telegram *TelegramNotificator, email *EmailNotificator, withdrawalEmail string) *Notificator {
	return &Notificator{
		logger:              logger,
		TelegramNotificator: telegram,
		EmailNotificator:    email,
		withdrawalEmail:     withdrawalEmail,
	}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// SendWithdrawalRequest delivers the withdrawal message to every
// configured channel. It fails only if no channel accepted it.
func (n *Notificator) SendWithdrawalRequest(w *models.Withdrawal, merchantName string) error {
	message := formatWithdrawal(w, merchantName)
	delivered := false

	if n.TelegramNotificator != nil {
		chatID := n.TelegramNotificator.ChatID()
		if chatID == "" {
			n.logger.Warn("Telegram relay configured but no chat is bound, send /start to the bot")
		} else {
			n.safeCall(func() {
				if err := n.TelegramNotificator.Send(chatID, message); err != nil {
					n.logger.Error("Failed to send telegram withdrawal message: ", err)
				} else {
					delivered = true
				}
			}, "telegramWithdrawal")
		}
	}

	if n.EmailNotificator != nil && n.withdrawalEmail != "" {
		n.safeCall(func() {
			if err := n.EmailNotificator.Send(n.withdrawalEmail, "Withdrawal request", message); err != nil {
				n.logger.Error("Failed to send withdrawal email: ", err)
			} else {
				delivered = true
			}
		}, "emailWithdrawal")
	}

	if !delivered {
		return fmt.Errorf("withdrawal request was not delivered to any channel")
	}
	return nil
}

func formatWithdrawal(w *models.Withdrawal, merchantName string) string {
	message := fmt.Sprintf(
		"Withdrawal request\nMerchant: %s\nAccount: %s\nAmount: %s\nRequested: %s",
		merchantName,
		w.AccountNumber,
		w.Amount.String(),
		time.Unix(w.CreatedAt, 0).UTC().Format(time.RFC3339),
	)
	if w.Comment != "" {
		message += "\nComment: " + w.Comment
	}
	return message
}
