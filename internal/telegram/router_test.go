package telegram

import (
	"context"
	"errors"
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeSender struct {
	texts []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

type recordingHandler struct {
	calls [][]string
	err   error
}

func (h *recordingHandler) Handle(_ context.Context, _ Sender, _ *tgbotapi.Message, args []string) error {
	h.calls = append(h.calls, args)
	return h.err
}

func command(chatType, text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text:     text,
		From:     &tgbotapi.User{ID: 7},
		Chat:     &tgbotapi.Chat{ID: 7, Type: chatType},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func newTestRouter() *Router {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRouter(logger)
}

func TestRouter_DispatchesWithArguments(t *testing.T) {
	r := newTestRouter()
	h := &recordingHandler{}
	r.RegisterCommand("contribuer", h)
	bot := &fakeSender{}

	r.HandleMessage(context.Background(), bot, command("private", "/contribuer 12  25 anonyme", 11))

	assert.Equal(t, [][]string{{"12", "25", "anonyme"}}, h.calls)
	assert.Empty(t, bot.texts)
}

func TestRouter_IgnoresGroupChats(t *testing.T) {
	r := newTestRouter()
	h := &recordingHandler{}
	r.RegisterCommand("cadeaux", h)
	bot := &fakeSender{}

	r.HandleMessage(context.Background(), bot, command("group", "/cadeaux 10", 8))

	assert.Empty(t, h.calls)
	assert.Empty(t, bot.texts)
}

func TestRouter_UnknownCommand(t *testing.T) {
	r := newTestRouter()
	bot := &fakeSender{}

	r.HandleMessage(context.Background(), bot, command("private", "/todo", 5))

	if assert.Len(t, bot.texts, 1) {
		assert.Contains(t, bot.texts[0], "/help")
	}
}

func TestRouter_HandlerErrorIsReported(t *testing.T) {
	r := newTestRouter()
	r.RegisterCommand("familles", &recordingHandler{err: errors.New("db down")})
	bot := &fakeSender{}

	r.HandleMessage(context.Background(), bot, command("private", "/familles", 9))

	if assert.Len(t, bot.texts, 1) {
		assert.Contains(t, bot.texts[0], "erreur")
	}
}

func TestRouter_IgnoresPlainText(t *testing.T) {
	r := newTestRouter()
	bot := &fakeSender{}

	r.HandleMessage(context.Background(), bot, &tgbotapi.Message{
		Text: "bonjour",
		From: &tgbotapi.User{ID: 7},
		Chat: &tgbotapi.Chat{ID: 7, Type: "private"},
	})

	assert.Empty(t, bot.texts)
}
