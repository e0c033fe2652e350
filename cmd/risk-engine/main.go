package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/config"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/handlers"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/hub"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/logger"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/pool"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/publisher"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("risk-engine", cfg.Log)
	logger.SetGlobalLogger(log)

	// Context for graceful shutdown of consumers, hub, and pumps
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres is optional: without a DSN the store-backed endpoints
	// respond 503 and everything else still works.
	var wagerStore store.WagerStore
	if cfg.Postgres.DSN != "" {
		client, err := store.NewClient(cfg.Postgres.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer client.Close()
		wagerStore = client
		log.Info().Msg("connected to postgres")
	} else {
		log.Warn().Msg("no postgres DSN configured, store-backed endpoints disabled")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
	}
	pingCancel()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	// Candidate pool fed from the leg streams
	cache := pool.NewCache(cfg.Freshness())
	consumer := pool.NewConsumer(redisClient, cache, pool.ConsumerConfig{
		Streams:       cfg.CandidateStreams(),
		ConsumerGroup: cfg.Streams.ConsumerGroup,
		ConsumerID:    cfg.Streams.ConsumerID,
	}, log)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("candidate consumer stopped")
		}
	}()

	// WebSocket fanout
	h := hub.NewHub(log)
	go h.Run(ctx)

	pub := publisher.NewStreamPublisher(redisClient, cfg.Streams.RecommendationStream)

	handler := handlers.NewHandler(ctx, cfg.Engine, wagerStore, cache, pub, h, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handler.Routes(r)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTP.Port).Msg("risk engine listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")

	// Stop consumers, hub, and websocket pumps
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
