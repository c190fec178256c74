package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/ledger"
	"github.com/Kerhoff/ListeDeNoel/internal/service"
	"github.com/Kerhoff/ListeDeNoel/internal/telegram"
)

const contributeUsage = "❌ Usage : /contribuer <cadeau_id> <montant> [anonyme] [message]\n" +
	"Exemple : /contribuer 12 25,50 anonyme Joyeux Noël !"

var errUsage = errors.New("usage")

// parseContribution reads "<cadeau_id> <montant> [anonyme] [message…]".
// Amounts accept a decimal comma.
func parseContribution(args []string) (int64, ledger.Submission, error) {
	if len(args) < 2 {
		return 0, ledger.Submission{}, errUsage
	}

	giftID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || giftID <= 0 {
		return 0, ledger.Submission{}, errUsage
	}

	amount, err := decimal.NewFromString(strings.Replace(strings.TrimSuffix(args[1], "€"), ",", ".", 1))
	if err != nil {
		return 0, ledger.Submission{}, errUsage
	}

	rest := args[2:]
	sub := ledger.Submission{Amount: amount}
	if len(rest) > 0 && strings.EqualFold(rest[0], "anonyme") {
		sub.IsAnonymous = true
		rest = rest[1:]
	}
	sub.Message = strings.Join(rest, " ")

	return giftID, sub, nil
}

// ContributeHandler handles /contribuer.
type ContributeHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewContributeHandler creates a new ContributeHandler.
func NewContributeHandler(svc *service.Service, logger *logrus.Logger) *ContributeHandler {
	return &ContributeHandler{svc: svc, logger: logger}
}

func (h *ContributeHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	giftID, sub, err := parseContribution(args)
	if err != nil {
		return send(bot, message.Chat.ID, contributeUsage)
	}

	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	contribution, summary, err := h.svc.Ledger.Submit(ctx, giftID, user.ID, sub)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":         user.ID,
		"gift_id":         giftID,
		"contribution_id": contribution.ID,
	}).Info("Contribution submitted from Telegram")

	text := fmt.Sprintf("🎉 Merci ! Participation de %s enregistrée", euros(contribution.Amount))
	if contribution.IsAnonymous {
		text += " (anonyme)"
	}
	text += fmt.Sprintf(".\nTotal collecté : %s, reste %s.", euros(summary.Total), euros(summary.Remaining))

	return send(bot, message.Chat.ID, text)
}

// MyContributionsHandler handles /mescontributions.
type MyContributionsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewMyContributionsHandler creates a new MyContributionsHandler.
func NewMyContributionsHandler(svc *service.Service, logger *logrus.Logger) *MyContributionsHandler {
	return &MyContributionsHandler{svc: svc, logger: logger}
}

func (h *MyContributionsHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	contributions, err := h.svc.Ledger.Mine(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(contributions) == 0 {
		return send(bot, message.Chat.ID, "Vous n'avez encore participé à aucun cadeau.")
	}

	stats, err := h.svc.Ledger.Stats(ctx, user.ID)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💝 Vos participations : %s en %d fois\n", euros(stats.Total), stats.Count)
	for _, c := range contributions {
		fmt.Fprintf(&b, "\n#%d cadeau %d : %s", c.ID, c.GiftID, euros(c.Amount))
		if c.IsAnonymous {
			b.WriteString(" (anonyme)")
		}
		if c.Message != "" {
			fmt.Fprintf(&b, "\n   « %s »", c.Message)
		}
	}

	return send(bot, message.Chat.ID, b.String())
}
