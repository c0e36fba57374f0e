package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/watchfeed-backend/internal/config"
	"github.com/AnshRaj112/watchfeed-backend/internal/database"
	"github.com/AnshRaj112/watchfeed-backend/internal/handlers"
	"github.com/AnshRaj112/watchfeed-backend/internal/logger"
	"github.com/AnshRaj112/watchfeed-backend/internal/middleware"
	"github.com/AnshRaj112/watchfeed-backend/internal/routes"
	"github.com/AnshRaj112/watchfeed-backend/internal/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// uploader picks the file backend: the external file service when
// configured, then Cloudinary, otherwise uploads are rejected.
func uploader(cfg *config.Config, log zerolog.Logger) services.FileUploader {
	if cfg.FileServiceURL != "" {
		log.Info().Str("url", cfg.FileServiceURL).Msg("file service uploads enabled")
		return services.NewHTTPFileService(cfg.FileServiceURL, cfg.FileServiceToken)
	}
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cld, err := services.NewCloudinaryUploader(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Cloudinary, file uploads will not be available")
			return services.NoUploader{}
		}
		log.Info().Msg("Cloudinary uploads enabled")
		return cld
	}
	log.Warn().Msg("no file backend configured, file uploads will not be available")
	return services.NoUploader{}
}

func main() {
	// Load env
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.New().Level(cfg.LogLevel).Console(!cfg.IsProduction()).Make()
	if envErr != nil {
		log.Debug().Msg("no .env file found")
	}
	if len(cfg.ServerAuthKeys) == 0 {
		log.Warn().Msg("SERVER_AUTH_KEYS is empty, every tenant request will be rejected")
	}

	if err := database.ConnectRedis(cfg.RedisURI, log); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer database.DisconnectRedis()

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB, log); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer database.Disconnect()

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := services.EnsureIndexes(idxCtx, database.DB); err != nil {
		log.Warn().Err(err).Msg("failed to ensure MongoDB indexes")
	} else {
		log.Info().Msg("MongoDB indexes ensured")
	}
	idxCancel()

	stores := services.Stores{
		Watchers:      services.NewMongoWatcherStore(database.DB),
		Groups:        services.NewMongoGroupStore(database.DB),
		Activities:    services.NewMongoActivityStore(database.DB),
		Notifications: services.NewMongoNotificationStore(database.DB),
	}
	tokens := services.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	// unread entries live as long as the watcher's token
	unread := services.NewUnreadCounter(services.NewRedisCounterCache(database.RedisClient), stores.Notifications, tokens.TTL(), log)
	watchers := services.NewWatcherService(stores, tokens, cfg.PageLimit, log)

	h := handlers.New(handlers.Deps{
		Engine:   services.NewEngine(stores, unread, uploader(cfg, log), log),
		Feeds:    services.NewPaginator(stores, cfg.PageLimit),
		Watchers: watchers,
		Groups:   services.NewGroupService(stores, log),
		Log:      log,
	})

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → TokenRateLimit
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Info().Str("host", cfg.AllowedHost).Msg("production security enabled")
	}

	routes.SetupRoutes(r, h, routes.Guards{
		ServerAuth:  middleware.ServerAuth(cfg.ServerAuthKeys, log),
		WatcherAuth: middleware.WatcherAuth(watchers, log),
		WriteLimit:  middleware.WriteRateLimit(database.RedisClient, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("notification backend running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
