package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wipeforge/wipeforge/internal/api"
	"github.com/wipeforge/wipeforge/internal/chain"
	"github.com/wipeforge/wipeforge/internal/config"
	"github.com/wipeforge/wipeforge/internal/storage"
	"github.com/wipeforge/wipeforge/internal/wipe"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Starting WipeForge evidence server...")

	// Open chain storage
	log.Printf("Opening Pebble database at %s", cfg.Pebble.Path)
	stores, err := storage.Open(cfg.Pebble.Path)
	if err != nil {
		log.Fatalf("Failed to open chain storage: %v", err)
	}

	// Replay the persisted chain
	ledger, err := loadLedger(cfg, stores)
	if err != nil {
		log.Fatalf("Failed to load evidence chain: %v", err)
	}
	log.Printf("Evidence chain loaded: %d block(s), frozen=%v", ledger.Len(), ledger.Frozen())

	// Wire the wipe executor with the simulated driver
	sanitizer := wipe.NewSimulatedSanitizer(time.Duration(cfg.Wipe.SimulateDelayMS) * time.Millisecond)
	executor := wipe.NewExecutor(sanitizer, cfg.Artifacts.Path)
	service := wipe.NewService(executor, ledger, stores,
		cfg.Wipe.AppendRetries,
		time.Duration(cfg.Wipe.AppendBackoffMS)*time.Millisecond,
	)

	// Initialize API router
	router := api.NewRouter(cfg, service, stores)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Engine(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in goroutine
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close chain database
	if err := stores.Close(); err != nil {
		log.Printf("Error closing chain database: %v", err)
	}

	log.Println("Server stopped")
}

// loadLedger replays persisted blocks into an in-memory ledger and verifies
// them, persisting the genesis block on first start. An integrity violation
// leaves the ledger frozen but the read API available for the operator.
func loadLedger(cfg *config.Config, stores *storage.Stores) (*chain.Ledger, error) {
	opts := []chain.Option{
		chain.WithAppendTimeout(time.Duration(cfg.Wipe.AppendTimeoutMS) * time.Millisecond),
	}

	blocks, err := stores.LoadBlocks()
	if err != nil {
		return nil, err
	}

	if len(blocks) == 0 {
		ledger := chain.NewLedger(opts...)
		genesis, err := ledger.Latest()
		if err != nil {
			return nil, err
		}
		if err := stores.Blocks.Save(genesis); err != nil {
			return nil, fmt.Errorf("failed to persist genesis block: %w", err)
		}
		return ledger, nil
	}

	ledger, err := chain.Load(blocks, opts...)
	var integrity *chain.IntegrityError
	if errors.As(err, &integrity) {
		log.Printf("Integrity violation in persisted chain at indices %v; appends frozen until reconciled", integrity.Indices)
		if serr := stores.State.SetFrozen(true); serr != nil {
			log.Printf("Failed to persist frozen flag: %v", serr)
		}
		return ledger, nil
	}
	if err != nil {
		return nil, err
	}

	// A violation recorded before the last shutdown keeps the chain frozen
	// until an operator reconciles it.
	frozen, err := stores.State.Frozen()
	if err != nil {
		return nil, err
	}
	if frozen {
		log.Println("Chain is marked frozen from a previous integrity violation; appends disabled")
		ledger.Freeze()
	}
	return ledger, nil
}
