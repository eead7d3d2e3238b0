package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"creationhub/internal/adapter/repo"
	"creationhub/internal/http/handlers"
	httpapi "creationhub/internal/http/httpapi"
	"creationhub/internal/hub"
	"creationhub/internal/infra"
	"creationhub/internal/infra/credentials"
	"creationhub/internal/infra/geoip"
	"creationhub/internal/middleware"
	"creationhub/internal/providers/image"
	"creationhub/internal/providers/prompt"
	"creationhub/internal/providers/video"
	"creationhub/internal/queue"
	"creationhub/internal/settings"
	"creationhub/internal/statuscache"
	"creationhub/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	var status *statuscache.StatusCache
	cache, err := infra.ConnectCache(cfg.RedisAddr)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, status snapshots disabled")
	} else {
		defer cache.Close()
		status = statuscache.New(cache)
	}

	settingsStore, err := settings.NewStore(cfg.SettingsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load settings")
	}
	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init file store")
	}

	// vendor keys fall back to the integration_tokens table
	creds := credentials.NewStore(dbpool)
	imageKey := cfg.ImageAPIKey
	if imageKey == "" {
		if imageKey, err = creds.ImageAPIKey(ctx); err != nil {
			logger.Warn().Err(err).Msg("read image token")
		}
	}
	videoKey := cfg.VideoAPIKey
	if videoKey == "" {
		if videoKey, err = creds.VideoAPIKey(ctx); err != nil {
			logger.Warn().Err(err).Msg("read video token")
		}
	}

	imageClient := image.NewClient(image.Options{
		BaseURL: cfg.ImageAPIBaseURL,
		APIKey:  imageKey,
		Model:   cfg.ImageModel,
	})
	videoClient := video.NewClient(video.Options{
		BaseURL: cfg.VideoAPIBaseURL,
		APIKey:  videoKey,
		Model:   cfg.VideoModel,
	})
	enhancer := buildEnhancer(cfg, &logger)

	var producer queue.Producer
	if p, err := queue.NewProducer(cfg.KafkaBrokers); err != nil {
		logger.Warn().Err(err).Msg("kafka unavailable, persisting inline")
	} else {
		producer = p
	}

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	svc, err := hub.NewService(hub.Deps{
		Images:       repo.NewImageRepository(dbpool),
		Analytics:    repo.NewAnalyticsRepository(dbpool),
		Provider:     imageClient,
		Producer:     producer,
		PersistTopic: cfg.KafkaPersistTopic,
		Settings:     settingsStore,
		StatusCache:  status,
		Logger:       &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build hub service")
	}
	defer svc.Close()

	app := &handlers.App{
		Hub:       svc,
		Jobs:      repo.NewJobRepository(dbpool),
		Prompts:   repo.NewPromptRepository(dbpool),
		Analytics: repo.NewAnalyticsRepository(dbpool),
		Video:     videoClient,
		Enhancer:  enhancer,
		Status:    status,
		Files:     files,
		DB:        dbpool,
		Logger:    &logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultLocale:  "en",
		CountryLookup:  countryLookup,
		RateLimit:      cfg.RateLimitPerMin,
		RatePeriod:     time.Minute,
		Logger:         &logger,
		FilesDir:       files.BasePath(),
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
	logger.Info().Msg("server stopped")
}

func buildEnhancer(cfg *infra.Config, logger *infra.Logger) prompt.Enhancer {
	switch cfg.PromptProvider {
	case "gemini":
		return prompt.NewGeminiEnhancer(prompt.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Logger:  logger,
		})
	case "static":
		return prompt.NewStaticEnhancer()
	default:
		return prompt.NewOpenAIEnhancer(prompt.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Logger:  logger,
		})
	}
}
