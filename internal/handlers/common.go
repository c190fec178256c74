package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/service"
	"github.com/Kerhoff/ListeDeNoel/internal/telegram"
)

const notLinkedText = "🔗 Votre compte Telegram n'est pas encore lié.\n" +
	"Générez un code depuis votre profil sur le site, puis envoyez /lier <code>."

func send(bot telegram.Sender, chatID int64, text string) error {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func sendMarkdown(bot telegram.Sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// replyError shows err to the user when it carries a user-facing message and
// returns it otherwise.
func replyError(bot telegram.Sender, chatID int64, err error) error {
	if message, ok := service.UserMessage(err); ok {
		return send(bot, chatID, "❌ "+message)
	}
	return err
}

// linkedUser returns the account linked to the sender of message. It replies
// with linking instructions and returns nil when there is none.
func linkedUser(ctx context.Context, svc *service.Service, bot telegram.Sender, message *tgbotapi.Message) (*models.User, error) {
	user, err := svc.UserByTelegram(ctx, message.From.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, send(bot, message.Chat.ID, notLinkedText)
	}
	return user, nil
}

func euros(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}
