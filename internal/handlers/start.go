package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/telegram"
)

const helpText = `🎄 *Liste de Noël*

*Compte :*
• /lier <code> - Lier votre compte Telegram

*Cadeaux :*
• /familles - Vos familles
• /cadeaux <famille_id> - Cadeaux d'une famille et cagnottes

*Contributions :*
• /contribuer <cadeau_id> <montant> [anonyme] [message] - Participer à un cadeau
• /mescontributions - Vos participations

_Le propriétaire d'un cadeau ne voit jamais les participations._`

// StartHandler handles the /start command
type StartHandler struct {
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(logger *logrus.Logger) *StartHandler {
	return &StartHandler{logger: logger}
}

// Handle processes the /start command
func (h *StartHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	text := "👋 Bienvenue sur Liste de Noël !\n\n" +
		"Je vous permets de consulter les listes de vos familles et de participer aux cadeaux.\n" +
		"Commencez par lier votre compte avec /lier <code>, puis tapez /help."

	if err := send(bot, message.Chat.ID, text); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent start message")

	return nil
}

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	return sendMarkdown(bot, message.Chat.ID, helpText)
}
