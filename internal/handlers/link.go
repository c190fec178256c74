package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/service"
	"github.com/Kerhoff/ListeDeNoel/internal/telegram"
)

// LinkHandler handles /lier <code>, attaching the Telegram account to the
// user who issued the code.
type LinkHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.Service, logger *logrus.Logger) *LinkHandler {
	return &LinkHandler{svc: svc, logger: logger}
}

func (h *LinkHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) != 1 {
		return send(bot, message.Chat.ID, "❌ Usage : /lier <code>")
	}

	user, err := h.svc.LinkTelegram(ctx, args[0], message.From.ID)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"telegram_id": message.From.ID,
	}).Info("Telegram account linked")

	return send(bot, message.Chat.ID, fmt.Sprintf("✅ Compte lié. Bonjour %s !", user.DisplayName()))
}
