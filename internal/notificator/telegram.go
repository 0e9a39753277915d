package notificator

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/openkassa/kassaterm/pkg/logger"
)

// TelegramNotificator delivers withdrawal messages to the operator chat.
// The chat can be preconfigured or bound at runtime: the first /start
// sent to the bot captures that chat's id.
type TelegramNotificator struct {
	logger *logger.Logger
	bot    *bot.Bot

	mu     sync.RWMutex
	chatID string
}

func NewTelegramNotificator(logger *logger.Logger, token, defaultChatID string) (*TelegramNotificator, error) {
	provider := &TelegramNotificator{
		logger: logger,
		chatID: defaultChatID,
	}
	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	go b.Start(context.Background())
	provider.bot = b

	return provider, nil
}

// ChatID returns the bound operator chat id, or "" if none yet.
func (t *TelegramNotificator) ChatID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.chatID
}

func (t *TelegramNotificator) Send(chatID, message string) error {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   message,
	}
	if _, err := t.bot.SendMessage(context.Background(), params); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (t *TelegramNotificator) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	t.logger.Debug("Telegram update: ", update.Message.From.Username, " ", update.Message.Text)

	if update.Message.Text == "/start" {
		chatID := fmt.Sprint(update.Message.Chat.ID)
		t.mu.Lock()
		t.chatID = chatID
		t.mu.Unlock()
		t.logger.Info("Telegram operator chat bound ", "chat_id ", chatID)

		if err := t.Send(chatID, "Withdrawal requests will be delivered to this chat."); err != nil {
			t.logger.Error("Failed to confirm telegram binding: ", err)
		}
	}
}
