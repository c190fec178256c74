package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Kerhoff/ListeDeNoel/internal/ledger"
	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

type contributionRequest struct {
	Amount      decimal.Decimal `json:"montant"`
	Message     string          `json:"message" validate:"max=1000"`
	IsAnonymous bool            `json:"is_anonymous"`
}

type contributionResponse struct {
	*models.Contribution
	Summary *ledger.Summary `json:"resume"`
}

func (s *Server) handleSubmitContribution(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req contributionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	contribution, summary, err := s.svc.Ledger.Submit(r.Context(), id, currentUser(r).ID, ledger.Submission{
		Amount:      req.Amount,
		Message:     req.Message,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, contributionResponse{Contribution: contribution, Summary: summary})
}

func (s *Server) handleGiftContributions(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	state, err := s.svc.Ledger.VisibleState(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleMyContributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := s.svc.Ledger.Mine(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, contributions)
}

func (s *Server) handleContributionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Ledger.Stats(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDeleteContribution(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.svc.Ledger.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
