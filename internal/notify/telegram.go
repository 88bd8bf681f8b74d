package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender is the part of *tgbotapi.BotAPI the notifier uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts reminders to a single chat.
type Telegram struct {
	api    TelegramSender
	chatID int64
}

// NewTelegram authorizes the bot token against the Telegram API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	api.Debug = false
	return NewTelegramWithSender(api, chatID), nil
}

func NewTelegramWithSender(api TelegramSender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

func (t *Telegram) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, msg.Text())); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}
