package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/auth"
	"server/internal/chats"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/credentials"
	"server/internal/infra/geoip"
	"server/internal/kvstore"
	"server/internal/ledger"
	"server/internal/providers/chat"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := kvstore.NewFileStore(cfg.DataDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to open data directory")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		// Locale detection degrades to headers only; not fatal.
		logger.Warn().Err(err).Msg("geoip database unavailable")
	}

	led := ledger.New(store, logger)
	users := auth.NewService(store, led, logger)
	sessions := chats.NewStore(store, logger)

	responder := &chat.Dispatcher{
		Real: chat.NewAnthropicResponder(chat.AnthropicOptions{
			Model:   cfg.AnthropicModel,
			BaseURL: cfg.AnthropicBaseURL,
			Logger:  logger,
		}),
		Demo: &chat.DemoResponder{Delay: cfg.DemoDelay},
	}

	app := &handlers.App{
		Store:         store,
		Users:         users,
		Ledger:        led,
		Chats:         sessions,
		Responder:     responder,
		Keys:          credentials.NewStore(store),
		Logger:        logger,
		DefaultAPIKey: cfg.AnthropicAPIKey,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   geoip.LookupFunc(resolver),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if c, ok := resolver.(interface{ Close() error }); ok && c != nil {
		_ = c.Close()
	}
	logger.Info().Msg("server stopped")
}
