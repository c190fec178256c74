package api

import (
	"net/http"
	"time"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, currentUser(r))
}

// handleLogout clears the access token cookie. Tokens themselves are issued
// and revoked by the authentication service.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Déconnexion réussie"})
}

func (s *Server) handleTelegramLink(w http.ResponseWriter, r *http.Request) {
	link, err := s.svc.IssueTelegramLink(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, link)
}
