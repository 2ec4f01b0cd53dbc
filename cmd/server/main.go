package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"raspadinha/config"
	"raspadinha/internal/database"
	"raspadinha/internal/repository"
	"raspadinha/internal/router"
	"raspadinha/internal/service"
	"raspadinha/pkg/cache"
	"raspadinha/pkg/cloudinary"

	"github.com/sirupsen/logrus"
)

const sweepInterval = time.Minute

func main() {
	cfg := config.Load()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Server.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}
	database.SeedAdmin(db)

	store := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if store != nil {
		logrus.Info("redis caching enabled")
	}

	var cloud cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			logrus.WithError(err).Fatal("cloudinary init failed")
		}
	} else {
		logrus.Warn("cloudinary not configured, image uploads disabled")
	}

	catalog := service.NewCatalogService(repository.NewCardRepository(db))
	stopSweep := make(chan struct{})
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := catalog.SweepExpired(); err != nil {
					logrus.WithError(err).Warn("card expiry sweep failed")
				}
			case <-stopSweep:
				return
			}
		}
	}()

	engine := router.Setup(cfg, db, store, cloud)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")
	close(stopSweep)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("server shutdown failed")
	}
	logrus.Info("server stopped")
}
