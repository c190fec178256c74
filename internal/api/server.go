package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/realtime"
	"github.com/Kerhoff/ListeDeNoel/internal/service"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options configure the HTTP API.
type Options struct {
	JWTSecret    string
	FrontendURL  string
	CookieSecure bool
}

// Server provides the REST API of the gift registry.
type Server struct {
	svc          *service.Service
	hub          *realtime.Hub
	db           HealthChecker
	logger       *logrus.Logger
	router       *mux.Router
	jwtSecret    []byte
	frontendURL  string
	cookieSecure bool
}

// NewServer creates a Server and registers all routes. hub and db may be nil.
func NewServer(svc *service.Service, hub *realtime.Hub, db HealthChecker, logger *logrus.Logger, opts Options) *Server {
	s := &Server{
		svc:          svc,
		hub:          hub,
		db:           db,
		logger:       logger,
		router:       mux.NewRouter(),
		jwtSecret:    []byte(opts.JWTSecret),
		frontendURL:  opts.FrontendURL,
		cookieSecure: opts.CookieSecure,
	}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	origins := []string{"http://localhost:5173"}
	if s.frontendURL != "" {
		origins = []string{s.frontendURL}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
	})

	return c.Handler(s.router)
}

func (s *Server) routes() {
	r := s.router
	r.Use(requestID, s.recovery, s.logging)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.respondError(w, http.StatusNotFound, "ressource introuvable")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, "méthode non autorisée")
	})

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Auth
	auth := r.PathPrefix("/auth").Subrouter()
	auth.Use(s.authenticate(false))
	auth.HandleFunc("/me", s.handleMe).Methods("GET")
	auth.HandleFunc("/logout", s.handleLogout).Methods("POST")
	auth.HandleFunc("/telegram-link", s.handleTelegramLink).Methods("POST")

	// Families
	familles := r.PathPrefix("/familles").Subrouter()
	familles.Use(s.authenticate(false))
	for _, root := range []string{"", "/"} {
		familles.HandleFunc(root, s.handleGetFamilies).Methods("GET")
		familles.HandleFunc(root, s.handleCreateFamily).Methods("POST")
	}
	familles.HandleFunc("/search", s.handleSearchFamilies).Methods("GET")
	familles.HandleFunc("/invitations/pending", s.handlePendingInvitations).Methods("GET")
	familles.HandleFunc("/invitations/{token}/accept", s.handleAcceptInvitation).Methods("POST")
	familles.HandleFunc("/demandes/{id:[0-9]+}/accepter", s.handleAcceptJoinRequest).Methods("POST")
	familles.HandleFunc("/demandes/{id:[0-9]+}", s.handleRejectJoinRequest).Methods("DELETE")
	familles.HandleFunc("/{id:[0-9]+}", s.handleGetFamily).Methods("GET")
	familles.HandleFunc("/{id:[0-9]+}", s.handleUpdateFamily).Methods("PUT")
	familles.HandleFunc("/{id:[0-9]+}", s.handleDeleteFamily).Methods("DELETE")
	familles.HandleFunc("/{id:[0-9]+}/invite", s.handleInvite).Methods("POST")
	familles.HandleFunc("/{id:[0-9]+}/invitations", s.handleFamilyInvitations).Methods("GET")
	familles.HandleFunc("/{id:[0-9]+}/demander-adhesion", s.handleRequestToJoin).Methods("POST")
	familles.HandleFunc("/{id:[0-9]+}/demandes", s.handleJoinRequests).Methods("GET")
	familles.HandleFunc("/{id:[0-9]+}/membres/{userId:[0-9]+}", s.handleRemoveMember).Methods("DELETE")
	familles.HandleFunc("/{id:[0-9]+}/recap", s.handleRecap).Methods("GET")

	// Gifts
	cadeaux := r.PathPrefix("/cadeaux").Subrouter()
	cadeaux.Use(s.authenticate(false))
	for _, root := range []string{"", "/"} {
		cadeaux.HandleFunc(root, s.handleGetGifts).Methods("GET")
		cadeaux.HandleFunc(root, s.handleCreateGift).Methods("POST")
	}
	cadeaux.HandleFunc("/me", s.handleMyGifts).Methods("GET")
	cadeaux.HandleFunc("/famille/{id:[0-9]+}", s.handleFamilyGifts).Methods("GET")
	cadeaux.HandleFunc("/{id:[0-9]+}", s.handleGetGift).Methods("GET")
	cadeaux.HandleFunc("/{id:[0-9]+}", s.handleUpdateGift).Methods("PUT")
	cadeaux.HandleFunc("/{id:[0-9]+}", s.handleDeleteGift).Methods("DELETE")
	cadeaux.HandleFunc("/{id:[0-9]+}/mark-purchased", s.handleMarkPurchased).Methods("POST")
	cadeaux.HandleFunc("/{id:[0-9]+}/unmark-purchased", s.handleUnmarkPurchased).Methods("POST")

	// Contributions
	contributions := r.PathPrefix("/contributions").Subrouter()
	contributions.Use(s.authenticate(false))
	contributions.HandleFunc("/cadeaux/{id:[0-9]+}", s.handleSubmitContribution).Methods("POST")
	contributions.HandleFunc("/cadeaux/{id:[0-9]+}", s.handleGiftContributions).Methods("GET")
	contributions.HandleFunc("/mes-contributions", s.handleMyContributions).Methods("GET")
	contributions.HandleFunc("/stats", s.handleContributionStats).Methods("GET")
	contributions.HandleFunc("/{id:[0-9]+}", s.handleDeleteContribution).Methods("DELETE")

	// Realtime
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(s.authenticate(true))
	ws.HandleFunc("/familles/{id:[0-9]+}", s.handleFamilySocket).Methods("GET")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Health(r.Context()); err != nil {
			s.logger.WithError(err).Warn("Health check failed")
			s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
