package main

import (
	"time"

	"chronary-tracker/internal/config"
	"chronary-tracker/internal/database"
	httpapi "chronary-tracker/internal/http"
	"chronary-tracker/internal/logger"
	"chronary-tracker/internal/repository"
	"chronary-tracker/internal/service"
	"chronary-tracker/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "chronary-tracker")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Repositories: Postgres when the DB is reachable, memory fallback so
	// plain `go run` still serves the full API.
	var (
		tagTypesRepo   repository.TagTypesRepository
		tagsRepo       repository.TagsRepository
		subtagsRepo    repository.SubtagsRepository
		activitiesRepo repository.ActivitiesRepository
	)
	if cfg.DBEnabled {
		if db, err := database.NewPostgresDB(&cfg.Database); err == nil {
			log.Info("DB enabled for chronary-tracker")
			defer database.Close(db)
			tagTypesRepo = repository.NewPostgresTagTypesRepository(db)
			tagsRepo = repository.NewPostgresTagsRepository(db)
			subtagsRepo = repository.NewPostgresSubtagsRepository(db)
			activitiesRepo = repository.NewPostgresActivitiesRepository(db)
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}
	if tagsRepo == nil {
		mem := repository.NewMemoryRepository()
		tagTypesRepo = mem
		tagsRepo = mem
		subtagsRepo = mem
		activitiesRepo = mem
	}

	// Auth token cache: Redis when enabled, in-process otherwise.
	var kv store.KV = store.NewMemoryKV()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = store.NewRedisKV(redisClient)
		defer redisClient.Close()
	}

	var authenticator service.Authenticator
	if cfg.Auth.Mode == "remote" {
		authenticator = service.NewRemoteAuthenticator(
			cfg.Auth.VerifyURL, kv, time.Duration(cfg.Auth.CacheTTLSecs)*time.Second, log)
	} else {
		log.Warn("using static token auth (dev mode)")
		authenticator = service.NewStaticAuthenticator(cfg.Auth.StaticTokens)
	}

	guard := service.NewGuard(tagsRepo, subtagsRepo)
	taxonomy := service.NewTaxonomyService(tagTypesRepo, tagsRepo, subtagsRepo, guard, log)
	activities := service.NewActivityService(activitiesRepo, guard, log)
	stats := service.NewStatsService(activitiesRepo, tagsRepo, subtagsRepo, tagTypesRepo, log)

	authMW := httpapi.NewAuthMiddleware(authenticator, log)
	router := httpapi.NewRouter(log)
	router.RegisterServiceRoutes()
	router.RegisterTrackerRoutes(authMW,
		httpapi.NewTagTypesHandler(taxonomy, log),
		httpapi.NewTagsHandler(taxonomy, log),
		httpapi.NewSubtagsHandler(taxonomy, log),
		httpapi.NewActivitiesHandler(activities, stats, taxonomy, log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)
	if err := srv.Run(); err != nil {
		log.Warn("server exited with error", zap.Error(err))
	}
}
