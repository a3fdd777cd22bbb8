package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"idol-career/apps/server/internal/archive"
	"idol-career/apps/server/internal/config"
	"idol-career/apps/server/internal/gateway"
	"idol-career/apps/server/internal/lobby"
	"idol-career/career"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Server] Invalid configuration: %v", err)
	}
	tables, err := cfg.Tables()
	if err != nil {
		log.Fatalf("[Server] Failed to load roster tables: %v", err)
	}
	archiveService, archiveMode, err := archive.NewService(cfg)
	if err != nil {
		log.Fatalf("[Server] Failed to init archive service: %v", err)
	}
	defer archiveService.Close()
	narrator, narratorKind := cfg.Narrator()

	lby := lobby.New(lobby.Options{
		NewConfig: func() (career.Config, error) { return cfg.CareerConfig(tables) },
		Narrator:  narrator,
		Archive:   archiveService,
		IdleTTL:   cfg.SessionIdle,
	})
	defer lby.Close()
	gw := gateway.New(lby)
	archiveHTTP := archive.NewHTTPHandler(archiveService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	archiveHTTP.RegisterRoutes(mux)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go lby.RunReaper(ctx, cfg.ReapInterval)

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Server] Shutdown error: %v", err)
		}
	}()

	log.Printf("[Server] Ruleset: %s", cfg.Ruleset)
	log.Printf("[Server] Archive mode: %s", archiveMode)
	log.Printf("[Server] Narrator: %s", narratorKind)
	log.Printf("[Server] Starting WebSocket server on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
	log.Printf("[Server] Stopped")
}
