package notifier

import (
	"fmt"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram delivers alerts to a single chat. No retry here: the poller
// does not retry failed deliveries within a cycle, the next diff stays
// consistent regardless.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram: bot token is empty")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram: chat id is empty")
	}
	bot, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: auth failed: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) SendText(text string) error {
	if t == nil || t.bot == nil {
		return fmt.Errorf("telegram: not initialized")
	}
	msg := tgbot.NewMessage(t.chatID, text)
	msg.ParseMode = tgbot.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send failed: %w", err)
	}
	return nil
}

// BotUsername reports the authenticated bot account, for the startup log.
func (t *Telegram) BotUsername() string {
	if t == nil || t.bot == nil {
		return ""
	}
	return t.bot.Self.UserName
}
