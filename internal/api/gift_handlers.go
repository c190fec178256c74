package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Kerhoff/ListeDeNoel/internal/ledger"
	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/service"
)

type giftRequest struct {
	Title        string          `json:"titre" validate:"required,max=255"`
	Price        decimal.Decimal `json:"prix"`
	Description  string          `json:"description" validate:"max=5000"`
	PhotoURL     *string         `json:"photo_url" validate:"omitempty,url,max=2048"`
	PurchaseLink *string         `json:"lien_achat" validate:"omitempty,url,max=2048"`
	FamilyIDs    []int64         `json:"famille_ids" validate:"required,min=1,dive,gt=0"`
}

func (req giftRequest) input() service.GiftInput {
	return service.GiftInput{
		Title:        req.Title,
		Price:        req.Price,
		Description:  req.Description,
		PhotoURL:     emptyToNil(req.PhotoURL),
		PurchaseLink: emptyToNil(req.PurchaseLink),
		FamilyIDs:    req.FamilyIDs,
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func (s *Server) handleGetGifts(w http.ResponseWriter, r *http.Request) {
	gifts, err := s.svc.VisibleGifts(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, gifts)
}

func (s *Server) handleMyGifts(w http.ResponseWriter, r *http.Request) {
	gifts, err := s.svc.MyGifts(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, gifts)
}

func (s *Server) handleFamilyGifts(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	gifts, err := s.svc.FamilyGifts(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, gifts)
}

func (s *Server) handleGetGift(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	gift, err := s.svc.Gift(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, gift)
}

func (s *Server) handleCreateGift(w http.ResponseWriter, r *http.Request) {
	var req giftRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	gift, err := s.svc.CreateGift(r.Context(), currentUser(r).ID, req.input())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, gift)
}

func (s *Server) handleUpdateGift(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req giftRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user := currentUser(r)
	gift, err := s.svc.UpdateGift(r.Context(), id, user.ID, req.input())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ledger.GiftViewFor(gift, user.ID))
}

func (s *Server) handleDeleteGift(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.svc.DeleteGift(r.Context(), id, currentUser(r).ID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkPurchased(w http.ResponseWriter, r *http.Request) {
	s.handlePurchase(w, r, s.svc.Ledger.MarkPurchased)
}

func (s *Server) handleUnmarkPurchased(w http.ResponseWriter, r *http.Request) {
	s.handlePurchase(w, r, s.svc.Ledger.UnmarkPurchased)
}

type purchaseFunc func(ctx context.Context, giftID, actorID int64) (*models.Gift, error)

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request, fn purchaseFunc) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	gift, err := fn(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, gift)
}
