package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"trivia-api/config"
	"trivia-api/db"
	"trivia-api/handlers"
	"trivia-api/middleware"
	"trivia-api/monitoring"
	"trivia-api/repository"
	"trivia-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Log.WithError(err).Fatal("Failed to load configuration")
	}

	release := cfg.Server.GinMode == gin.ReleaseMode
	utils.InitLogger(cfg.Logging.Level, cfg.Logging.File, release)
	gin.SetMode(cfg.Server.GinMode)

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		utils.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close(conn)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			utils.Log.WithError(err).Fatal("Failed to migrate database")
		}
	}

	clues := repository.NewClueRepository(conn)
	games := repository.NewGameRepository(conn)
	categories, rdb, err := categoryStore(cfg, conn, clues)
	if err != nil {
		utils.Log.WithError(err).Fatal("Failed to set up category store")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	monitoring.InitMetrics()

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())
	r.Use(monitoring.PrometheusMiddleware())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RemovePoweredBy())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/metrics", monitoring.PrometheusHandler())

	ping := func(ctx context.Context) error { return db.Ping(ctx, conn) }
	handlers.NewHandler(categories, clues, games, ping).Register(r)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		var err error
		if cfg.Server.UseHTTPS {
			utils.Log.WithFields(logrus.Fields{
				"addr": server.Addr,
				"cert": cfg.Server.TLSCertFile,
			}).Info("Starting server with HTTPS")
			server.TLSConfig = tlsConfig()
			err = server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			utils.Log.WithField("addr", server.Addr).Info("Starting server with HTTP")
			if release {
				utils.Log.Warn("Running without HTTPS. Set USE_HTTPS=true for production")
			}
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.WithError(err).Error("Server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	utils.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Log.WithError(err).Error("Server forced to shut down")
	}
	utils.Log.Info("Server exited")
}

// categoryStore picks the category backend; the Redis client is returned so main can close it.
func categoryStore(cfg *config.Config, conn *gorm.DB, clues *repository.ClueRepository) (handlers.CategoryStore, *redis.Client, error) {
	if cfg.CategoryBackend != config.BackendRedis {
		return repository.NewCategoryRepository(conn), nil, nil
	}
	rdb, err := db.ConnectRedis(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	utils.Log.WithField("addr", cfg.Redis.Addr).Info("Categories served from Redis")
	return repository.NewRedisCategoryRepository(rdb, clues), rdb, nil
}

// tlsConfig uses modern defaults: TLS 1.2+ and AEAD cipher suites only
func tlsConfig() *tls.Config {
	return &tls.Config{
		MinVersion:       tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP384, tls.CurveP256},
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		},
	}
}
