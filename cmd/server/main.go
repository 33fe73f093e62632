package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"costablanca/server/config"
	"costablanca/server/internal/api"
	"costablanca/server/internal/catalog"
	"costablanca/server/internal/feed"
	"costablanca/server/internal/feedlog"
	"costablanca/server/internal/ingest"
	"costablanca/server/internal/scheduler"
	"costablanca/server/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.RegionOverridesPath != "" {
		if err := config.LoadRegionOverrides(cfg.RegionOverridesPath); err != nil {
			logger.WithError(err).Fatal("Failed to load region overrides")
		}
		logger.WithField("path", cfg.RegionOverridesPath).Info("Loaded region overrides")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	cycleLog, err := feedlog.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open feed cycle log")
	}
	logger.Infof("Using feed cycle log at: %s", cfg.Database.Path)

	client := feed.NewClient(
		time.Duration(cfg.Feeds.TimeoutSeconds)*time.Second,
		cfg.Feeds.RequestsPerMinute,
		logger,
	)

	propertyStore := store.New()
	pipeline := ingest.NewPipeline(client, propertyStore, cycleLog, cfg, logger)
	cat := catalog.New(
		propertyStore,
		pipeline,
		time.Duration(cfg.Feeds.RevalidateSeconds)*time.Second,
		logger,
	)

	sched := scheduler.New(
		pipeline,
		time.Duration(cfg.Feeds.RevalidateSeconds)*time.Second,
		logger,
	)
	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(cat, pipeline, cycleLog, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Infof("Starting server on port %d", cfg.Server.Port)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
