package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99minutos/account-portal/internal/api"
	"github.com/99minutos/account-portal/internal/api/handler"
	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/service"
	"github.com/99minutos/account-portal/internal/infrastructure/db/mongo"
	"github.com/99minutos/account-portal/internal/infrastructure/db/redis"
	"github.com/99minutos/account-portal/internal/infrastructure/queue"
	"github.com/99minutos/account-portal/internal/pkg/config"
	"github.com/99minutos/account-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Debug:   cfg.Debug(),
		Service: "account-portal",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index setup failed")
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	users := mongo.NewUserRepository(db)
	onboardingRepo := mongo.NewOnboardingRepository(db)
	accounts := mongo.NewAccountRepository(db)
	passkeyRepo := mongo.NewPasskeyRepository(db)
	ceremonies := redis.NewCeremonyStore(rdb)

	// --- Auth events ---
	eventService := service.NewEventService(mongo.NewEventRepository(db), logger.Component("events"))
	dispatcher := queue.NewDispatcher(cfg.Events.Workers, eventService, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	// --- Services ---
	issuer := service.NewSessionIssuer(cfg.SessionSecret, cfg.SessionTTL)
	gate := service.NewSignInGate(onboardingRepo)
	signin := service.NewSignInService(gate, issuer, dispatcher, cfg.BaseURL, logger.Component("signin"))
	credentials := service.NewAuthService(users, dispatcher, logger.Component("credentials"))
	onboarding := service.NewOnboardingService(users, onboardingRepo, logger.Component("onboarding"))

	linker := service.NewAccountLinker(users, accounts, dispatcher, logger.Component("accounts"))
	google := service.NewGoogleService(service.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.BaseURL + "/auth/callback/" + domain.ProviderGoogle,
	}, ceremonies, linker, logger.Component("google"))
	if cfg.Google.ClientID == "" {
		log.Warn().Msg("GOOGLE_CLIENT_ID not set, google sign-in disabled")
	}

	passkeys, err := service.NewPasskeyService(service.PasskeyConfig{
		RPDisplayName: cfg.WebAuthn.RPDisplayName,
		RPID:          cfg.WebAuthn.RPID,
		RPOrigins:     cfg.WebAuthn.RPOrigins,
		CeremonyTTL:   cfg.WebAuthn.CeremonyTTL,
	}, users, passkeyRepo, ceremonies, logger.Component("passkey"))
	if err != nil {
		log.Fatal().Err(err).Msg("webauthn setup failed")
	}

	// --- HTTP ---
	e, err := api.NewRouter(api.Deps{
		Credentials: credentials,
		SignIn:      signin,
		Onboarding:  onboarding,
		Google:      google,
		Passkeys:    passkeys,
		Health: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
		Cookies: handler.Cookies{Secure: cfg.SecureCookies(), SessionTTL: issuer.TTL()},
		Log:     logger.Component("http"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("base_url", cfg.BaseURL).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
