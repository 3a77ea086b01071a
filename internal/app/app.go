// Package app boots the coinshop API server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/activation"
	"github.com/ectroshop9/coinshop/internal/config"
	"github.com/ectroshop9/coinshop/internal/db"
	adminapi "github.com/ectroshop9/coinshop/internal/http/api/admin"
	"github.com/ectroshop9/coinshop/internal/http/api/front"
	"github.com/ectroshop9/coinshop/internal/links"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/recharge"
	"github.com/ectroshop9/coinshop/internal/sales"
	"github.com/ectroshop9/coinshop/internal/security"
)

// Run boots the server and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	configureLogging(cfg.Log)

	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSeed := seedDefaultAdmin(conn); errSeed != nil {
		return errSeed
	}

	engine := buildEngine(conn, cfg)

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Listen)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return fmt.Errorf("shutdown: %w", errShutdown)
		}
		return nil
	case errServe := <-errCh:
		return errServe
	}
}

// buildEngine assembles the gin engine with all routes registered.
func buildEngine(conn *gorm.DB, cfg *config.Config) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	activationSvc := activation.NewService(conn, cfg.JWT)
	rechargeSvc := recharge.NewService(conn)
	salesSvc := sales.NewService(conn, links.NewClient(cfg.Worker))

	front.RegisterFrontRoutes(engine, conn, cfg.JWT, activationSvc, rechargeSvc, salesSvc)
	adminapi.RegisterAdminRoutes(engine, conn, cfg.JWT)

	return engine
}

// configureLogging applies the log level and optional rotated file output.
func configureLogging(cfg config.LogConfig) {
	level, errParse := log.ParseLevel(cfg.Level)
	if errParse != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}
}

// seedDefaultAdmin creates an initial administrator when none exists. The
// generated password is printed once; it must be changed after first login.
func seedDefaultAdmin(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("count admins: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	password := security.GenerateChargeCode()
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash admin password: %w", errHash)
	}

	admin := models.Admin{Username: "admin", Password: hash, Active: true}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("create default admin: %w", errCreate)
	}

	log.Warnf("created default admin %q with password %q, change it immediately", admin.Username, password)
	return nil
}
