package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"artemius/internal/api/telegram"
	"artemius/internal/api/v1/router"
	"artemius/internal/config"
	"artemius/internal/logger"
	"artemius/internal/model"
	"artemius/internal/repository"
	"artemius/internal/service"
)

func main() {
	log := logger.New(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))

	// 1. Load configuration
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msgf("Error loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Msgf("Invalid config: %v", err)
	}
	log = logger.New(cfg.Env, cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Msgf("Invalid DAY_BOUNDARY_TZ: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 2. Telegram client. Long polling needs a client timeout above the poll timeout.
	httpClient := &http.Client{Timeout: time.Duration(cfg.TelegramPollTimeoutSec)*time.Second + 15*time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramBotToken, cfg.TelegramAPIEndpoint, httpClient)
	if err != nil {
		log.Fatal().Msgf("Failed to connect to Telegram: %v", err)
	}
	log.Info().Str("bot", api.Self.UserName).Msg("Authorized on Telegram")

	// 3. Stores, services
	subs := service.NewSubscriptionService(
		repository.NewSubscriptionCacheRepo(2*cfg.SubscriptionCacheTTL),
		telegram.NewMembershipOracle(api, cfg.OracleRatePerSec, cfg.OracleBurst, cfg.OracleTimeout),
		cfg.Channels(),
		cfg.SubscriptionCacheTTL,
		time.Now,
		log,
	)
	limits := cfg.Limits()
	quota := service.NewQuotaService(repository.NewUsageRepo(), repository.NewStatsRepo(), limits, loc, time.Now, log)
	entitlements := service.NewEntitlementService(subs, quota, log)

	generators := service.PlaceholderGenerators()
	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GeminiAPIKey, Backend: genai.BackendGeminiAPI})
		if err != nil {
			log.Fatal().Msgf("Failed to create Gemini client: %v", err)
		}
		files := telegram.NewFileDownloader(api, 30*time.Second)
		generators[model.FeatureChat] = service.NewGeminiChatGenerator(client.Models, cfg.GeminiChatModel)
		generators[model.FeatureImage] = service.NewImagenGenerator(client.Models, cfg.GeminiImageModel)
		generators[model.FeatureDocument] = service.NewGeminiDocumentGenerator(client.Models, files, cfg.GeminiVisionModel)
		log.Info().Msg("Gemini generators enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, using placeholder generators")
	}
	dispatcher := telegram.NewProgressDispatcher(service.NewDispatcherService(generators, cfg.GenerationTimeout, log), api, log)

	conversation := service.NewConversationService(
		repository.NewConversationStateRepo(),
		subs,
		entitlements,
		quota,
		dispatcher,
		cfg.ConsumeOnDispatchFailure,
		log,
	)
	bot := telegram.NewBot(api, conversation, telegram.NewRenderer(entitlements.Limits()), cfg.TelegramPollTimeoutSec, log)

	// 4. Ops HTTP server
	srv := &http.Server{
		Addr:         cfg.OpsAddr,
		Handler:      router.New(cfg, entitlements, subs, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Run until a signal arrives
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Msgf("🚀 Ops server starting on %s", cfg.OpsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutdown signal received, exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Msgf("Bot stopped with error: %v", err)
	}
	log.Info().Msg("Bot shut down gracefully")
}
