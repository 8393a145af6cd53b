package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wayfarerhq/mapbridge/config"
	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/internal/cache"
	"github.com/wayfarerhq/mapbridge/internal/httpapi"
	"github.com/wayfarerhq/mapbridge/internal/viewer"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/sdk"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() {
		if err := logger.Close(); err != nil {
			log.Warnw("Failed to flush logger", "error", err)
		}
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Redis client with TLS in production
	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Server.Environment == config.EnvProduction {
		redisOptions.TLSConfig = &tls.Config{
			ServerName: cfg.Redis.Address,
			MinVersion: tls.VersionTLS12,
		}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warnw("Failed to close Redis client", "error", err)
		}
	}()

	// Engine bridge, wrapped with the cartography cache
	remote := bridge.NewRemoteBridge(
		cfg.Bridge.BaseURL,
		cfg.Bridge.EventsURL,
		bridge.RemoteOptions{Timeout: time.Duration(cfg.Bridge.TimeoutSeconds) * time.Second},
	)
	defer remote.Close()

	cartographyCache := cache.NewCartography(
		redisClient,
		time.Duration(cfg.Cache.MaxAgeSeconds)*time.Second,
	)
	native := cache.WrapBridge(remote, cartographyCache)

	s := sdk.New(cfg, native)
	if err := s.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize SDK: %v", err)
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			log.Warnw("Failed to close SDK", "error", err)
		}
	}()

	if cfg.Viewer.APIKey != "" {
		if err := s.SetAPIKey(context.Background(), "", cfg.Viewer.APIKey); err != nil {
			log.Fatalf("Failed to authenticate: %v", err)
		}
	}

	// Router setup
	if cfg.Server.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.Server.Version})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	transport := viewer.NewTransport(s.Controller(), &cfg.Server)
	r.GET("/v1/viewer/ws", transport.HandleWebSocket)

	httpapi.NewHandler(s).Register(r)

	log.Infof("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
