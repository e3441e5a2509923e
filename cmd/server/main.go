package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clicktap-chat/internal/config"
	"clicktap-chat/internal/database"
	"clicktap-chat/internal/handlers"
	"clicktap-chat/internal/middleware"
	"clicktap-chat/internal/paramstore"
	"clicktap-chat/internal/router"
	"clicktap-chat/internal/services"
)

func main() {
	log.Println("🚀 Starting Clicktap Chat proxy...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("✗ Invalid configuration: %v", err)
	}
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Resolve Service Token ────
	if cfg.ServiceToken == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := paramstore.NewFromEnvironment(ctx)
		if err == nil {
			err = cfg.ResolveServiceToken(ctx, store)
		}
		cancel()
		if err != nil {
			log.Fatalf("✗ Service token resolution failed: %v", err)
		}
		log.Printf("✓ Service token loaded from parameter %s", cfg.ServiceTokenParam)
	}

	// ──── Step 3: Initialize Rate Limit Counter ────
	var counter middleware.Counter
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer rdb.Close()
		counter = middleware.NewRedisCounter(rdb, "ratelimit:chat:", cfg.ChatRateWindow)
		log.Println("✓ Redis connected (shared rate limit)")
	} else {
		mem := middleware.NewMemoryCounter(cfg.ChatRateWindow)
		defer mem.Close()
		counter = mem
		log.Println("✓ In-memory rate limit counter")
	}

	// ──── Initialize Services & Handlers ────
	proxy := services.NewChatProxy(cfg.LLMBaseURL, cfg.ServiceToken)
	chatHandler := handlers.NewChatHandler(proxy)
	chatLimiter := middleware.NewRateLimiter(counter, cfg.ChatRateLimit, cfg.ChatRateWindow)
	if cfg.ChatRateLimit == 0 {
		log.Println("⚠ Chat rate limiting disabled (CHAT_RATE_LIMIT=0)")
	}

	// ──── Step 4: Start HTTP Server ────
	r := router.New(chatHandler, chatLimiter, cfg.FrontendURL)

	// No WriteTimeout: a slow upstream answer is bounded by the client's request.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("✗ Shutdown error: %v", err)
		}
	}()

	log.Printf("✓ Clicktap Chat ready on http://localhost:%s (env=%s)", cfg.Port, cfg.Env)
	log.Printf("  Chat:     POST http://localhost:%s/api/chat", cfg.Port)
	log.Printf("  Upstream: %s/v1/chat", cfg.LLMBaseURL)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
