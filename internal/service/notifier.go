package service

import "github.com/Kerhoff/ListeDeNoel/internal/models"

// Notifier pushes change signals to connected clients.
type Notifier interface {
	// ContributionsUpdated signals a change in the gift's contributions to
	// everyone but its owner.
	ContributionsUpdated(gift *models.Gift)
	// GiftUpdated signals a purchase state change to everyone but the owner.
	GiftUpdated(gift *models.Gift)
	// GiftsUpdated signals that the gift list of the families changed.
	GiftsUpdated(familyIDs []int64, giftID int64)
}

type noopNotifier struct{}

func (noopNotifier) ContributionsUpdated(*models.Gift) {}

func (noopNotifier) GiftUpdated(*models.Gift) {}

func (noopNotifier) GiftsUpdated([]int64, int64) {}
