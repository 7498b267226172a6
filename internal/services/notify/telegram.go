package notify

import (
	"context"
	"os"
	"strconv"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// TelegramNotifier delivers alerts to a Telegram chat, as an alternative to
// SMS for accounts without an SMS gateway.
type TelegramNotifier struct {
	bot    *tgbot.BotAPI
	chatID int64
}

// NewTelegramNotifierFromEnv reads TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID
// and connects the bot.
func NewTelegramNotifierFromEnv() (*TelegramNotifier, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chat := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chat == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID environment variables must be set")
	}
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "invalid TELEGRAM_CHAT_ID")
	}

	bot, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect telegram bot")
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Send posts the message to the configured chat.
func (n *TelegramNotifier) Send(_ context.Context, message string) (bool, error) {
	if _, err := n.bot.Send(tgbot.NewMessage(n.chatID, message)); err != nil {
		return false, errors.Wrap(err, "failed to send telegram message")
	}
	return true, nil
}
