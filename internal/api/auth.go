package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/service"
)

// AccessTokenCookie is the cookie the authentication service sets.
const AccessTokenCookie = "access_token"

// Claims are the JWT claims issued by the authentication service. The
// subject carries the numeric user id.
type Claims struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

type contextKey string

const (
	userContextKey      contextKey = "user"
	requestIDContextKey contextKey = "request_id"
)

var errMissingToken = errors.New("missing token")

// parseToken verifies an HS256 token and returns the caller identity.
func parseToken(secret []byte, raw string) (service.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return service.Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return service.Identity{}, fmt.Errorf("invalid token subject %q", claims.Subject)
	}

	return service.Identity{
		UserID:    userID,
		Username:  claims.Username,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}

// tokenFromRequest reads the bearer token, falling back to the access token
// cookie. allowQuery also accepts a token query parameter, for WebSocket
// handshakes that cannot set headers.
func tokenFromRequest(r *http.Request, allowQuery bool) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", errors.New("malformed authorization header")
		}
		return strings.TrimSpace(token), nil
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return strings.TrimPrefix(cookie.Value, "Bearer "), nil
	}

	if allowQuery {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, nil
		}
	}

	return "", errMissingToken
}

// authenticate verifies the caller's token and loads their user record.
func (s *Server) authenticate(allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := tokenFromRequest(r, allowQuery)
			if err != nil {
				s.respondError(w, http.StatusUnauthorized, "authentification requise")
				return
			}

			identity, err := parseToken(s.jwtSecret, raw)
			if err != nil {
				s.logger.WithError(err).WithField("request_id", requestIDFrom(r.Context())).Debug("Rejected token")
				s.respondError(w, http.StatusUnauthorized, "jeton invalide ou expiré")
				return
			}

			user, err := s.svc.EnsureUser(r.Context(), identity)
			if err != nil {
				s.respondServiceError(w, r, err)
				return
			}
			if !user.IsActive {
				s.respondError(w, http.StatusForbidden, "compte désactivé")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUser returns the authenticated user. It is only valid behind
// authenticate.
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
