// Command main is the entry point for the onchat ledger API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"onchat/internal/config"
	"onchat/internal/observability"
	"onchat/internal/server"
)

// @title Onchat Ledger API
// @version 1.0
// @description Chat ledger API with fee-charging channel registration, membership, moderation, and claimable balances
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@onchat.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8483
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey SignatureAuth
// @in header
// @name X-Onchat-Signature
// @description Wallet signature over onchat:<METHOD>:<path>:<unix-ts>:<keccak256(body)>. Send with X-Onchat-Address and X-Onchat-Timestamp.

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "onchat-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1.0,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Create server with dependency injection
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server. Listen returns after a graceful shutdown.
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	// Flush any buffered spans before exiting.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("Tracing shutdown error: %v", err)
	}
}
