package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

type familyRequest struct {
	Name        string `json:"nom" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type joinRequest struct {
	Message string `json:"message" validate:"max=1000"`
}

func (s *Server) handleGetFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := s.svc.MyFamilies(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, families)
}

func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var req familyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	family, err := s.svc.CreateFamily(r.Context(), currentUser(r).ID, req.Name, req.Description)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, family)
}

func (s *Server) handleSearchFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := s.svc.SearchFamilies(r.Context(), r.URL.Query().Get("query"), currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, families)
}

func (s *Server) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	family, err := s.svc.Family(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, family)
}

func (s *Server) handleUpdateFamily(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req familyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	family, err := s.svc.UpdateFamily(r.Context(), id, currentUser(r).ID, req.Name, req.Description)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, family)
}

func (s *Server) handleDeleteFamily(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.svc.DeleteFamily(r.Context(), id, currentUser(r).ID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req inviteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	invitation, err := s.svc.Invite(r.Context(), id, currentUser(r).ID, req.Email)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, invitation)
}

func (s *Server) handleFamilyInvitations(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	invitations, err := s.svc.FamilyInvitations(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, invitations)
}

func (s *Server) handlePendingInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := s.svc.PendingInvitations(r.Context(), currentUser(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, invitations)
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	family, err := s.svc.AcceptInvitation(r.Context(), mux.Vars(r)["token"], currentUser(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, family)
}

func (s *Server) handleRequestToJoin(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req joinRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	request, err := s.svc.RequestToJoin(r.Context(), id, currentUser(r).ID, req.Message)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, request)
}

func (s *Server) handleJoinRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	requests, err := s.svc.JoinRequestsOf(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, requests)
}

func (s *Server) handleAcceptJoinRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.svc.AcceptJoinRequest(r.Context(), id, currentUser(r).ID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Demande acceptée"})
}

func (s *Server) handleRejectJoinRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.svc.RejectJoinRequest(r.Context(), id, currentUser(r).ID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := s.pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := s.svc.RemoveMember(r.Context(), id, currentUser(r).ID, memberID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	recap, err := s.svc.Ledger.Recap(r.Context(), id, currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, recap)
}

func (s *Server) handleFamilySocket(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if s.hub == nil {
		s.respondError(w, http.StatusServiceUnavailable, "temps réel indisponible")
		return
	}

	user := currentUser(r)
	member, err := s.svc.Families.IsMember(r.Context(), id, user.ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if !member {
		s.respondError(w, http.StatusForbidden, "vous n'êtes pas membre de cette famille")
		return
	}

	if err := s.hub.Serve(w, r, id, user.ID); err != nil {
		s.logger.WithError(err).WithField("family_id", id).Warn("Failed to upgrade websocket")
	}
}
