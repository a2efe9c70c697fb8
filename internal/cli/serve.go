package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pulsedigest/pulse/internal/config"
	"github.com/pulsedigest/pulse/internal/llm"
	"github.com/pulsedigest/pulse/internal/server"
	"github.com/pulsedigest/pulse/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

// loadConfig reads the config file and applies env overrides. A .env
// file in the working directory is picked up when present.
func loadConfig() (config.Config, error) {
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.Provider = "openai"
		cfg.LLM.OpenAIKey = key
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	return store.Open(dbPath)
}

// newSummaryClient builds the LLM client or returns nil when summaries
// should use the deterministic fallback.
func newSummaryClient(cfg config.Config) llm.Client {
	if cfg.LLM.Provider == "" {
		return nil
	}
	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: summaries disabled (%v)\n", err)
		return nil
	}
	fmt.Fprintf(os.Stderr, "  llm: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
	return client
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	client := newSummaryClient(cfg)

	srv := server.New(db, client, cfg.Digest, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "pulse serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", db.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
