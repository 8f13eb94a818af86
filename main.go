package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var store Store
	switch cfg.DataBackend {
	case "memory":
		store = NewMemoryStore()
		slog.Warn("using in-memory store, data will not survive restarts")
	default:
		pg, err := NewPostgresStore(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("unable to initialize store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
	}

	var publisher NotificationPublisher = NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			slog.Error("unable to connect to AMQP broker", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	}

	h := NewHandler(store, publisher, []byte(cfg.JWTSecret))

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	RegisterRouters(mux, h)

	addr := ":" + cfg.Port
	slog.Info("starting server", "addr", addr, "backend", cfg.DataBackend)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
