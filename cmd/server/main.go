package main

import (
	"log"

	"go-pos-terminal/internal/auth"
	"go-pos-terminal/internal/config"
	"go-pos-terminal/internal/database"
	"go-pos-terminal/internal/handlers"
	"go-pos-terminal/internal/logger"
	"go-pos-terminal/internal/sale"
	"go-pos-terminal/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.Init(cfg.LogMode, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	db, err := database.Open(database.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DBDSN,
		LogLevel: cfg.DBLogLevel,
		Retries:  cfg.DBConnectRetries,
	})
	if err != nil {
		lg.Fatal("database unavailable", zap.Error(err))
	}

	catalog := database.NewCatalog(db)
	committer := sale.NewCommitter(database.NewSaleStore(db), sale.WithLogger(lg.Named("sale")))
	terminal := session.NewTerminal(session.New(catalog, committer, lg.Named("session")))

	h := handlers.New(
		catalog,
		database.NewReports(db),
		database.NewUsers(db),
		terminal,
		auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		handlers.Options{
			UploadDir:         cfg.UploadDir,
			BaseURL:           cfg.BaseURL,
			CurrencySymbol:    cfg.CurrencySymbol,
			CORSOrigins:       cfg.CORSOrigins,
			AllowRegistration: cfg.AllowRegistration,
		},
		lg.Named("http"),
	)

	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handlers.NewRouter(h)

	if cfg.AllowRegistration {
		lg.Warn("registration route is open, disable ALLOW_REGISTRATION in production")
	}
	lg.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("base_url", cfg.BaseURL))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		lg.Fatal("server failed to start", zap.Error(err))
	}
}
