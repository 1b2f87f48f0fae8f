package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/newsletter/internal/api"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/postmark"
	"github.com/ignite/newsletter/internal/rate"
	"github.com/ignite/newsletter/internal/repository/postgres"
	"github.com/ignite/newsletter/internal/service/subscription"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Printf("Warning: database not reachable at startup: %v", err)
	}
	cancelPing()

	mailer, err := postmark.NewClient(postmark.Config{
		BaseURL:     cfg.Postmark.BaseURL,
		SenderEmail: cfg.Postmark.SenderEmail,
		ServerToken: cfg.Postmark.Token(),
		Timeout:     cfg.Postmark.Timeout(),
	})
	if err != nil {
		log.Fatalf("Failed to create email client: %v", err)
	}

	store := postgres.NewSubscriptionRepo(db)
	svc := subscription.NewService(store, mailer, cfg.Application.PublicBaseURL)

	var limiter *rate.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: redis not reachable, rate limiting disabled: %v", err)
		} else {
			limiter = rate.NewLimiter(rdb, cfg.Redis.SubscribeLimit, cfg.Redis.SubscribeWindow())
		}
		cancel()
	}

	handlers := api.NewHandlers(svc, db)
	router := api.SetupRoutes(handlers, limiter)
	server := api.NewServer(cfg.Server, router)

	go func() {
		log.Printf("Starting newsletter server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
