package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"getabib/internal/config"
	"getabib/internal/db"
	apihttp "getabib/internal/http"
	"getabib/internal/racesource"
	"getabib/internal/repository"
	"getabib/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		runnerRepo repository.RunnerRepository    = repository.NewMemoryRunnerRepository()
		traitRepo  repository.TraitRepository     = repository.NewMemoryTraitRepository()
		savedRepo  repository.SavedRaceRepository = repository.NewMemorySavedRaceRepository()
		viewRepo   repository.RaceViewRepository  = repository.NewMemoryRaceViewRepository()
		kvStore    repository.KVStore             = repository.NewMemoryKVStore()
		limiter    service.RefreshRateLimiter     = service.NewMemoryRefreshRateLimiter(time.Hour, cfg.RefreshLimitPerHour)
		tokenStore service.RefreshTokenStore
	)

	if cfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, cfg)
		if err != nil {
			logger.Fatal("db open", zap.Error(err))
		}
		defer pool.Close()
		runnerRepo = repository.NewPgRunnerRepository(pool)
		traitRepo = repository.NewPgTraitRepository(pool)
		savedRepo = repository.NewPgSavedRaceRepository(pool)
		viewRepo = repository.NewPgRaceViewRepository(pool)
	} else {
		logger.Warn("database url not configured, using in-memory repositories")
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			kvStore = repository.NewRedisKVStore(redisClient, "getabib:")
			limiter = service.NewRedisRefreshRateLimiter(redisClient, time.Hour, cfg.RefreshLimitPerHour)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	var source service.RaceSource
	if cfg.UseMockRaces {
		source = racesource.NewStaticSource(nil)
	} else {
		timeout := cfg.RaceAPITimeout()
		source = racesource.NewAggregator(
			logger,
			racesource.NewRunSignUpClient(cfg.RaceAPIBaseURL, timeout, cfg.RaceFetchRPS, logger),
			[]racesource.Fetcher{
				racesource.NewUltraSignupClient(cfg.UltraSignupAPIBaseURL, timeout, cfg.RaceFetchRPS, logger),
			},
			kvStore,
			racesource.Options{
				States:     cfg.RaceFetchStates,
				BatchSize:  cfg.RaceFetchBatchSize,
				BatchDelay: cfg.RaceFetchBatchDelay(),
				CacheTTL:   cfg.RaceCacheTTL(),
				Fallback:   racesource.MockRaces(),
			},
		)
	}

	// Primera carga del catalogo en segundo plano para no bloquear el arranque.
	go func() {
		races, err := source.Races(ctx)
		if err != nil {
			logger.Warn("race catalog warm-up failed", zap.Error(err))
			return
		}
		logger.Info("race catalog ready", zap.Int("races", len(races)))
	}()

	runnerSvc := service.NewRunnerService(logger, runnerRepo, traitRepo, viewRepo, savedRepo)
	profileSvc := service.NewProfileService(logger, traitRepo)
	goalsSvc := service.NewGoalsService(logger, kvStore)
	feedSvc := service.NewFeedService(logger, source, runnerSvc, goalsSvc, limiter, cfg.ScoringWorkers)
	savedSvc := service.NewSavedRaceService(logger, savedRepo, feedSvc)

	router := apihttp.NewRouter(logger, jwtSvc, apihttp.Handlers{
		Runners:  apihttp.NewRunnerHandler(logger, runnerSvc, jwtSvc),
		Profiles: apihttp.NewProfileHandler(logger, profileSvc),
		Goals:    apihttp.NewGoalHandler(logger, goalsSvc),
		Feed:     apihttp.NewFeedHandler(logger, feedSvc, runnerSvc),
		Saved:    apihttp.NewSavedHandler(logger, savedSvc),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
