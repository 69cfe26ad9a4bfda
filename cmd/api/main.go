// @title           Todo API
// @version         1.0
// @description     Minimal task list: create, list, update and delete todos.
// @host            localhost:5000
// @BasePath        /api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoapi/internal/app"
	"todoapi/internal/config"
	"todoapi/internal/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json", os.Stderr).WithError(err).Fatal("config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	application, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Fatal("app init")
	}
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	go func() {
		log.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP server shutdown")
	}

	if err := application.Close(); err != nil {
		log.WithError(err).Error("app close")
	}
}
