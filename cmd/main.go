package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/school-transport/internal/auth"
	"github.com/ukydev/school-transport/internal/config"
	"github.com/ukydev/school-transport/internal/dashboard"
	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/handlers"
	"github.com/ukydev/school-transport/internal/notify"
	"github.com/ukydev/school-transport/internal/scheduling"
	"github.com/ukydev/school-transport/internal/service"
)

func main() {
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&log.JSONFormatter{})

	store, err := buildStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize store")
	}

	var events notify.Publisher = notify.Noop{}
	if cfg.MQTTBroker != "" {
		mq, err := notify.NewMQTT(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MQTT broker")
		}
		events = mq
		log.WithField("broker", cfg.MQTTBroker).Info("Connected to MQTT broker")
	}

	engine := scheduling.NewEngine(store, events)
	agg := dashboard.NewAggregator(store, cfg.MaintenanceLookahead)
	svc := service.New(store, engine, agg, events, cfg.LockTimeout)
	authSvc := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)

	router := handlers.NewRouter(svc, authSvc, store, handlers.RouterConfig{
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("Transport server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// buildStore selects the configured storage backend. Both backends
// satisfy the entity and user store contracts.
func buildStore(cfg *config.Config) (interface {
	db.EntityStore
	db.UserStore
}, error) {
	switch cfg.StoreBackend {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
		return db.NewMongoStore(client.Database(cfg.MongoDB)), nil
	default:
		log.Info("Using in-memory store")
		return db.NewMemoryStore(), nil
	}
}
