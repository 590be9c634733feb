package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"farmmarket/internal/config"
	"farmmarket/internal/infrastructure/kafka"
	"farmmarket/internal/infrastructure/logger"
	"farmmarket/internal/infrastructure/metrics"
	"farmmarket/internal/infrastructure/mysql"
	"farmmarket/internal/order"
	"farmmarket/internal/order/usecase"
	"farmmarket/internal/server"
)

type closablePublisher interface {
	usecase.EventPublisher
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	var db *sql.DB
	if cfg.Order.Store == config.StoreMySQL {
		if cfg.Database.Migrate {
			if err := mysql.RunMigrations(cfg.Database, zapLogger); err != nil {
				zapLogger.Fatal("running migrations", zap.Error(err))
			}
		}

		db, err = mysql.NewConnection(cfg.Database)
		if err != nil {
			zapLogger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		zapLogger.Info("database connected")
	}

	var publisher closablePublisher = kafka.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = kafka.NewPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic), zapLogger)
		zapLogger.Info("kafka publisher enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.OrderTopic),
		)
	}
	defer publisher.Close()

	m := metrics.New()

	orderCtrl, err := order.NewModule(db, cfg, publisher, m, zapLogger)
	if err != nil {
		zapLogger.Fatal("building order module", zap.Error(err))
	}

	router := server.NewRouter(orderCtrl, m, cfg.Order.Store, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
		return
	}

	zapLogger.Info("server stopped gracefully")
}
