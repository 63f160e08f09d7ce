package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/archivist/internal/config"
	"github.com/semmidev/archivist/internal/domain"
	"github.com/spf13/cast"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts notifications to a fixed chat. The bot is created
// on first use, so constructing the notifier never touches the network.
type TelegramNotifier struct {
	token  string
	chatID int64
	newBot func(token string) (sender, error)
}

func NewTelegram(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	chatID, err := cast.ToInt64E(cfg.ChatID)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", cfg.ChatID, err)
	}

	return &TelegramNotifier{
		token:  cfg.BotToken,
		chatID: chatID,
		newBot: func(token string) (sender, error) {
			return tgbotapi.NewBotAPI(token)
		},
	}, nil
}

func (t *TelegramNotifier) Name() string {
	return "telegram"
}

func (t *TelegramNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bot, err := t.newBot(t.token)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("%s\n\n%s", n.Subject, n.Body))
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}
