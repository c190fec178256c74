// Package realtime pushes "data changed" signals to the browsers watching a
// family. Signals carry no amounts or names: clients refetch through the
// REST API, which applies the visibility rules.
package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olahol/melody"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

// Event types.
const (
	EventContributionsUpdated = "contributions_updated"
	EventGiftUpdated          = "cadeau_updated"
	EventGiftsUpdated         = "cadeaux_updated"
)

const (
	keyFamilyID = "famille_id"
	keyUserID   = "user_id"
)

// Event is the payload sent to clients.
type Event struct {
	Type   string `json:"type"`
	GiftID int64  `json:"cadeau_id"`
}

// Hub fans events out to WebSocket sessions grouped by family.
type Hub struct {
	m      *melody.Melody
	logger *logrus.Logger
}

// NewHub creates a hub accepting connections from allowedOrigin. An empty
// origin accepts any.
func NewHub(logger *logrus.Logger, allowedOrigin string) *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second
	m.Upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return allowedOrigin == "" || origin == "" || origin == allowedOrigin
	}

	h := &Hub{m: m, logger: logger}

	m.HandleConnect(func(s *melody.Session) {
		familyID, _ := s.Get(keyFamilyID)
		userID, _ := s.Get(keyUserID)
		logger.WithFields(logrus.Fields{"family_id": familyID, "user_id": userID}).Debug("WebSocket client connected")
	})

	m.HandleDisconnect(func(s *melody.Session) {
		familyID, _ := s.Get(keyFamilyID)
		logger.WithField("family_id", familyID).Debug("WebSocket client disconnected")
	})

	m.HandleError(func(s *melody.Session, err error) {
		logger.WithError(err).Debug("WebSocket error")
	})

	return h
}

// Serve upgrades the request and subscribes the session to the family.
// Membership must be checked by the caller.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, familyID, userID int64) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]any{
		keyFamilyID: familyID,
		keyUserID:   userID,
	})
}

// ContributionsUpdated implements service.Notifier.
func (h *Hub) ContributionsUpdated(gift *models.Gift) {
	h.broadcast(Event{Type: EventContributionsUpdated, GiftID: gift.ID}, gift.FamilyIDs, gift.OwnerID)
}

// GiftUpdated implements service.Notifier.
func (h *Hub) GiftUpdated(gift *models.Gift) {
	h.broadcast(Event{Type: EventGiftUpdated, GiftID: gift.ID}, gift.FamilyIDs, gift.OwnerID)
}

// GiftsUpdated implements service.Notifier.
func (h *Hub) GiftsUpdated(familyIDs []int64, giftID int64) {
	h.broadcast(Event{Type: EventGiftsUpdated, GiftID: giftID}, familyIDs, 0)
}

// Sessions returns the number of connected sessions.
func (h *Hub) Sessions() int {
	return h.m.Len()
}

// Close disconnects every session.
func (h *Hub) Close() error {
	return h.m.Close()
}

func (h *Hub) broadcast(event Event, familyIDs []int64, excludedUserID int64) {
	if len(familyIDs) == 0 {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode realtime event")
		return
	}

	filter := audience(familyIDs, excludedUserID)
	err = h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		familyID, _ := s.Get(keyFamilyID)
		userID, _ := s.Get(keyUserID)
		return filter(familyID, userID)
	})
	if err != nil && err != melody.ErrClosed {
		h.logger.WithError(err).Warnf("Failed to broadcast %s", event.Type)
	}
}

// audience builds the session filter of a broadcast. excludedUserID 0 means
// nobody is excluded.
func audience(familyIDs []int64, excludedUserID int64) func(familyID, userID any) bool {
	families := make(map[int64]bool, len(familyIDs))
	for _, id := range familyIDs {
		families[id] = true
	}

	return func(familyID, userID any) bool {
		fid, ok := familyID.(int64)
		if !ok || !families[fid] {
			return false
		}
		uid, _ := userID.(int64)
		return excludedUserID == 0 || uid != excludedUserID
	}
}
