package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"household-inventory/src/config"
	"household-inventory/src/events"
	"household-inventory/src/handlers"
	"household-inventory/src/logger"
	"household-inventory/src/models"
	"household-inventory/src/repositories"
	"household-inventory/src/routes"
	"household-inventory/src/services"
)

func main() {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	publisher := newPublisher(cfg.Kafka, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close publisher")
		}
	}()

	// Initialize repositories
	itemRepo := &repositories.ItemRepository{DB: db}
	ledgerRepo := &repositories.TransactionRepository{DB: db}

	// Initialize services
	itemService := &services.ItemService{
		Tx:                 &repositories.TxRunner{DB: db},
		Items:              itemRepo,
		Ledger:             ledgerRepo,
		Publisher:          publisher,
		Log:                log.With().Str("service", "items").Logger(),
		AllowNegativeStock: cfg.Inventory.AllowNegativeStock,
	}
	reportService := &services.ReportService{
		Items:  itemRepo,
		Ledger: ledgerRepo,
		Log:    log.With().Str("service", "reports").Logger(),
	}

	// Initialize handlers
	router := routes.NewRouter(log, cfg.CORS.AllowedOrigins,
		&handlers.ItemHandler{Service: itemService},
		&handlers.ReportHandler{Service: reportService},
	)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("app", cfg.App.Name).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Item{},
		&models.ItemTransaction{},
	)
}

func newPublisher(cfg config.KafkaConfig, log zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		return events.NoopPublisher{}
	}
	brokers := events.ParseBrokers(cfg.Brokers)
	log.Info().Strs("brokers", brokers).Str("topic", cfg.Topic).Msg("publishing ledger events to kafka")
	return events.NewKafkaPublisher(brokers, cfg.Topic, log)
}
