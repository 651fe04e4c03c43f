// devserver runs an in-memory stand-in for the Codgoo backend API on
// CODGOO_DEV_ADDR (default :8089). Point the client at it with
// CODGOO_API_BASE_URL=http://localhost:8089.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codgoo/client/internal/config"
	"codgoo/client/internal/devstub"
	"codgoo/client/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tokens := security.NewTokenProvider(
		[]byte(cfg.DevJWTSecret), "codgoo-devserver", cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)
	stub := devstub.NewServer(tokens, hasher, cfg.DevAttendOpen)

	if _, err := stub.Seed("demo", "demo@codgoo.com", "demo-password"); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Println("seeded account demo@codgoo.com / demo-password")

	srv := &http.Server{
		Addr:              cfg.DevAddr,
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("devserver listening on %s", cfg.DevAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down devserver...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("devserver stopped")
}
