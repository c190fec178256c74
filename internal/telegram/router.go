package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Sender sends messages to Telegram. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(ctx context.Context, bot Sender, message *tgbotapi.Message, args []string) error
}

// Router handles message routing and command parsing
type Router struct {
	logger   *logrus.Logger
	handlers map[string]CommandHandler
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// HandleMessage dispatches a command sent in a private chat. Group messages
// are ignored: gift progress must never be shown where an owner could read
// it.
func (r *Router) HandleMessage(ctx context.Context, bot Sender, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}

	fields := logrus.Fields{
		"chat_id":    message.Chat.ID,
		"user_id":    message.From.ID,
		"message_id": message.MessageID,
	}

	if !message.Chat.IsPrivate() {
		r.logger.WithFields(fields).Debug("Ignoring non-private message")
		return
	}
	if message.Text == "" || !message.IsCommand() {
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())
	fields["command"] = command

	handler, exists := r.handlers[command]
	if !exists {
		r.logger.WithFields(fields).Warn("Unknown command")
		r.reply(bot, message.Chat.ID, "❓ Commande inconnue. Tapez /help pour la liste des commandes.")
		return
	}

	r.logger.WithFields(fields).Info("Received command")

	if err := handler.Handle(ctx, bot, message, args); err != nil {
		r.logger.WithFields(fields).WithError(err).Error("Command handler failed")
		r.reply(bot, message.Chat.ID, "❌ Une erreur est survenue. Réessayez plus tard.")
	}
}

func (r *Router) reply(bot Sender, chatID int64, text string) {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.logger.WithError(err).Errorf("Failed to send message to chat %d", chatID)
	}
}
