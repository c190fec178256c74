package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/api"
	"github.com/Kerhoff/ListeDeNoel/internal/cache"
	"github.com/Kerhoff/ListeDeNoel/internal/config"
	"github.com/Kerhoff/ListeDeNoel/internal/handlers"
	"github.com/Kerhoff/ListeDeNoel/internal/realtime"
	"github.com/Kerhoff/ListeDeNoel/internal/repository/postgres"
	"github.com/Kerhoff/ListeDeNoel/internal/service"
	"github.com/Kerhoff/ListeDeNoel/internal/telegram"
	"github.com/Kerhoff/ListeDeNoel/pkg/logger"
)

const (
	sweepInterval   = 10 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	l.Info("Starting Liste de Noël...")

	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Database
	db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Summary cache
	summaries := cache.NewNoopSummaryCache()
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			l.WithError(err).Warn("Redis unavailable, contribution summaries will not be cached")
		} else {
			summaries = cache.NewRedisSummaryCache(redisClient, cfg.SummaryCacheTTL)
			l.Info("Contribution summary cache enabled")
		}
	}

	hub := realtime.NewHub(l, cfg.FrontendURL)

	// Service layer
	svc := service.New(l, service.Repositories{
		Users:         postgres.NewUserRepository(db.DB),
		Families:      postgres.NewFamilyRepository(db.DB),
		Gifts:         postgres.NewGiftRepository(db.DB),
		Contributions: postgres.NewContributionRepository(db.DB),
		Invitations:   postgres.NewInvitationRepository(db.DB),
		JoinRequests:  postgres.NewJoinRequestRepository(db.DB),
		TelegramLinks: postgres.NewTelegramLinkRepository(db.DB),
	}, summaries, hub, cfg.InvitationTTL)

	go svc.StartSweeper(ctx, sweepInterval)

	// HTTP API
	apiServer := api.NewServer(svc, hub, db, l, api.Options{
		JWTSecret:    cfg.JWTSecret,
		FrontendURL:  cfg.FrontendURL,
		CookieSecure: cfg.CookieSecure,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.PrometheusPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go serve(l, "HTTP", httpServer, cancel)
	go serve(l, "Metrics", metricsServer, nil)

	// Telegram bot
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.WithError(err).Error("Failed to create Telegram bot, continuing without it")
		} else {
			registerCommands(bot, svc, l)
			go func() {
				if err := bot.Start(ctx); err != nil {
					l.WithError(err).Error("Bot error")
				}
			}()
		}
	}

	l.Info("Liste de Noël started successfully")

	<-ctx.Done()
	l.Info("Received shutdown signal...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	var result *multierror.Error
	if err := hub.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := db.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		l.WithError(err).Error("Shutdown completed with errors")
		os.Exit(1)
	}
	l.Info("Liste de Noël stopped")
}

// serve runs srv until it is shut down. A listener failure triggers onFail.
func serve(l *logrus.Logger, name string, srv *http.Server, onFail context.CancelFunc) {
	l.Infof("%s server listening on %s", name, srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.WithError(err).Errorf("%s server error", name)
		if onFail != nil {
			onFail()
		}
	}
}

func registerCommands(bot *telegram.Bot, svc *service.Service, l *logrus.Logger) {
	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))
	bot.RegisterCommand("lier", handlers.NewLinkHandler(svc, l))
	bot.RegisterCommand("familles", handlers.NewFamiliesHandler(svc, l))
	bot.RegisterCommand("cadeaux", handlers.NewGiftsHandler(svc, l))
	bot.RegisterCommand("contribuer", handlers.NewContributeHandler(svc, l))
	bot.RegisterCommand("mescontributions", handlers.NewMyContributionsHandler(svc, l))
}
