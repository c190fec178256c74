package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/service"
	"github.com/Kerhoff/ListeDeNoel/internal/telegram"
)

// FamiliesHandler handles /familles.
type FamiliesHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewFamiliesHandler creates a new FamiliesHandler.
func NewFamiliesHandler(svc *service.Service, logger *logrus.Logger) *FamiliesHandler {
	return &FamiliesHandler{svc: svc, logger: logger}
}

func (h *FamiliesHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	families, err := h.svc.MyFamilies(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(families) == 0 {
		return send(bot, message.Chat.ID, "Vous ne faites partie d'aucune famille pour le moment.")
	}

	var b strings.Builder
	b.WriteString("👪 Vos familles :\n")
	for _, f := range families {
		fmt.Fprintf(&b, "\n#%d %s", f.ID, f.Name)
	}
	b.WriteString("\n\nTapez /cadeaux <famille_id> pour voir les cadeaux.")

	return send(bot, message.Chat.ID, b.String())
}

// GiftsHandler handles /cadeaux <famille_id>. Gifts the user owns are listed
// without any contribution or purchase information.
type GiftsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewGiftsHandler creates a new GiftsHandler.
func NewGiftsHandler(svc *service.Service, logger *logrus.Logger) *GiftsHandler {
	return &GiftsHandler{svc: svc, logger: logger}
}

func (h *GiftsHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) != 1 {
		return send(bot, message.Chat.ID, "❌ Usage : /cadeaux <famille_id>")
	}
	familyID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || familyID <= 0 {
		return send(bot, message.Chat.ID, "❌ Identifiant de famille invalide.")
	}

	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	gifts, err := h.svc.FamilyGifts(ctx, familyID, user.ID)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}
	if len(gifts) == 0 {
		return send(bot, message.Chat.ID, "Aucun cadeau dans cette famille.")
	}

	return send(bot, message.Chat.ID, formatGifts(gifts))
}

func formatGifts(gifts []service.GiftView) string {
	var b strings.Builder
	b.WriteString("🎁 Cadeaux :\n")
	for _, g := range gifts {
		fmt.Fprintf(&b, "\n#%d %s (%s)", g.ID, g.Title, euros(g.Price))
		switch {
		case g.Progress == nil:
			b.WriteString("\n   votre cadeau")
		case g.IsPurchased:
			b.WriteString("\n   ✅ déjà acheté")
		default:
			fmt.Fprintf(&b, "\n   %s collectés, reste %s (%s%%, %d participation(s))",
				euros(g.Progress.Total), euros(g.Progress.Remaining),
				g.Progress.Percentage.StringFixed(0), g.Progress.Count)
		}
	}
	return b.String()
}
