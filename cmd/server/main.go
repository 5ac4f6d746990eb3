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

	"github.com/joho/godotenv"

	"prodsheet/server/internal/config"
	"prodsheet/server/internal/googleauth"
	"prodsheet/server/internal/middleware"
	"prodsheet/server/internal/observability"
	"prodsheet/server/internal/relay"
	"prodsheet/server/internal/secrets"
	"prodsheet/server/internal/sheets"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	// Initialize observability (Loki)
	observability.Init()

	cfg := config.Load()
	if cfg.SpreadsheetID == "" {
		log.Fatal("SPREADSHEET_ID is not set. Set it via environment variable or .env")
	}

	// Secret store: environment by default, encrypted PostgreSQL store when
	// DATABASE_URL is configured.
	var store secrets.Store = secrets.EnvStore{}
	var dbStore *secrets.DBStore
	if cfg.DatabaseURL != "" {
		cipher, err := secrets.NewCipher(cfg.EncryptionKey)
		if err != nil {
			log.Fatalf("Failed to initialize secret encryption: %v", err)
		}
		dbStore, err = secrets.OpenDBStore(cfg.DatabaseURL, cipher)
		if err != nil {
			log.Fatalf("Failed to open secret store: %v", err)
		}
		store = dbStore
		log.Printf("Secret store: database")
	} else {
		log.Printf("Secret store: environment")
	}

	handler := relay.NewHandler(relay.HandlerConfig{
		Store:      store,
		SecretName: cfg.SecretName,
		Assertion: googleauth.AssertionBuilder{
			Scope:    cfg.Scope,
			Audience: cfg.TokenURL,
		},
		Exchanger: googleauth.NewTokenExchanger(cfg.TokenURL),
		Appender: sheets.NewAppendClient(sheets.Config{
			BaseURL:       cfg.SheetsBaseURL,
			SpreadsheetID: cfg.SpreadsheetID,
			SheetName:     cfg.SheetName,
		}),
	})

	log.Printf("Append target: spreadsheet %s, sheet %s", cfg.SpreadsheetID, cfg.SheetName)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	// Router (Go 1.22+ method-aware patterns). The append route is registered
	// without a method so OPTIONS preflights reach the CORS middleware.
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		storeStatus := "ok"
		if dbStore != nil {
			if err := dbStore.HealthCheck(); err != nil {
				storeStatus = "unavailable"
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, `{"status":"degraded","secret_store":"%s"}`, storeStatus)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","secret_store":"%s"}`, storeStatus)
	})

	mux.Handle("/v1/append",
		middleware.CORS(
			middleware.Recovery(
				middleware.RequestID(
					middleware.Logging(
						rateLimiter.Middleware(handler))))))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting sheet relay on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal %s, shutting down gracefully...", sig)

	// Give in-flight requests up to 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Printf("Server stopped")
}
