package notify

import (
	"context"
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageSender is the part of tgbotapi.BotAPI the Telegram sink needs.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram forwards notifications to a chat. Sending happens on a background
// goroutine started by Run; Notify only enqueues.
type Telegram struct {
	bot    MessageSender
	chatID int64
	queue  chan Notification
}

// NewTelegram logs in with token. It performs a network round trip.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return NewTelegramWith(bot, chatID), nil
}

func NewTelegramWith(bot MessageSender, chatID int64) *Telegram {
	return &Telegram{bot: bot, chatID: chatID, queue: make(chan Notification, 64)}
}

func (t *Telegram) Notify(_ context.Context, n Notification) {
	select {
	case t.queue <- n:
	default:
		log.Printf("level=warn msg=\"telegram queue full, dropping notification\" title=%q", n.Title)
	}
}

// Run delivers queued notifications until ctx is done.
func (t *Telegram) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-t.queue:
			if err := t.send(n); err != nil {
				log.Printf("level=warn msg=\"telegram send failed\" err=%v", err)
			}
		}
	}
}

func (t *Telegram) send(n Notification) error {
	msg := tgbotapi.NewMessage(t.chatID, Format(n))
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := t.bot.Send(msg)
	return err
}

// Format renders n as Telegram HTML.
func Format(n Notification) string {
	icon := map[Level]string{
		LevelSuccess: "✅",
		LevelInfo:    "ℹ️",
		LevelWarning: "⚠️",
		LevelError:   "❌",
	}[n.Level]
	text := fmt.Sprintf("%s <b>%s</b>", icon, html.EscapeString(n.Title))
	if n.Description != "" {
		text += "\n" + html.EscapeString(n.Description)
	}
	return text
}
