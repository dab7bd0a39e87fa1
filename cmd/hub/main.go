package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mintkit/hub/internal/database"
	"github.com/mintkit/hub/internal/email"
	"github.com/mintkit/hub/internal/logging"
	"github.com/mintkit/hub/internal/server"
	hubstripe "github.com/mintkit/hub/internal/stripe"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(os.Getenv("HUB_LOG_LEVEL"), os.Getenv("HUB_LOG_FORMAT"))

	port := os.Getenv("HUB_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("HUB_DB_PATH")
	if dbPath == "" {
		dbPath = "hub.db"
	}

	baseURL := os.Getenv("HUB_BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", port)
	}

	studioURL := os.Getenv("STUDIO_URL")
	if studioURL == "" {
		studioURL = "https://studio.mintkit.app"
	}

	allowedCardHosts := []string{"studio.mintkit.app"}
	if hosts := os.Getenv("HUB_ALLOWED_CARD_HOSTS"); hosts != "" {
		allowedCardHosts = nil
		for _, h := range strings.Split(hosts, ",") {
			if h = strings.TrimSpace(h); h != "" {
				allowedCardHosts = append(allowedCardHosts, h)
			}
		}
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	postmarkToken := os.Getenv("HUB_POSTMARK_TOKEN")
	fromEmail := os.Getenv("HUB_FROM_EMAIL")
	emailClient := email.NewClient(postmarkToken, fromEmail, baseURL)

	cfg := server.Config{
		Stripe: hubstripe.Config{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			BasicPriceID:  os.Getenv("STRIPE_BASIC_PRICE_ID"),
			ProPriceID:    os.Getenv("STRIPE_PRO_PRICE_ID"),
			SuccessURL:    baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:     baseURL + "/checkout/cancel",
		},
		BaseURL:          baseURL,
		StudioURL:        studioURL,
		StudioAPIKey:     os.Getenv("STUDIO_API_KEY"),
		AllowedCardHosts: allowedCardHosts,
		EmailClient:      emailClient,
	}

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("hub starting", "addr", ":"+port, "base_url", baseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
