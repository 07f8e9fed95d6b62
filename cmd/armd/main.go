// armd - Main entry point for an ARM resource-machine node
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anoma/arm-go/merklepath"
	"github.com/anoma/arm-go/store"
)

const (
	version = "0.1.0"
	banner  = `
   _____ _____      _
  / ____/ ____|    (_)
 | |   | |     ___  _ _ __
 | |   | |    / _ \| | '_ \
 | |___| |___| (_) | | | | |
  \_____\_____\___/|_|_| |_|

  armd v%s
  Anoma Resource Machine node
`
)

// Config holds node configuration.
type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// RPC
	RPCAddr string

	// Logging
	LogLevel string
	LogFile  string

	// Data
	DataDir string
}

func main() {
	cfg := parseFlags()

	fmt.Printf(banner, version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.DBHost, "db-host", "localhost", "PostgreSQL host")
	flag.IntVar(&cfg.DBPort, "db-port", 5432, "PostgreSQL port")
	flag.StringVar(&cfg.DBUser, "db-user", "arm", "PostgreSQL user")
	flag.StringVar(&cfg.DBPassword, "db-password", "", "PostgreSQL password")
	flag.StringVar(&cfg.DBName, "db-name", "arm", "PostgreSQL database name")

	flag.StringVar(&cfg.RPCAddr, "rpc", "127.0.0.1:9001", "RPC server address")

	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFile, "log-file", "", "Log file path (empty for stdout)")

	flag.StringVar(&cfg.DataDir, "data-dir", "./data", "Data directory")

	flag.Parse()

	return cfg
}

func run(ctx context.Context, cfg *Config) error {
	fmt.Println("Initializing ARM node...")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	fmt.Println("Connecting to database...")
	dbConfig := &store.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  "disable",
		MaxConns: 20,
	}

	db, err := store.NewPostgresStore(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("Database connected.")

	fmt.Println("Initializing commitment tree...")
	tree := merklepath.NewCommitmentTree(db)
	if err := tree.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize commitment tree: %w", err)
	}
	fmt.Printf("Commitment tree ready. Root: %x, Size: %d\n", tree.Root(), tree.Size())

	// TODO: Initialize remaining components
	// - RPC server accepting transactions for verification
	// - zkVM prover/verifier backend selection (groth16 vs in-memory)
	// - Nullifier-set persistence wiring for transaction.Verify callers

	fmt.Println("ARM node started successfully!")
	fmt.Println("Press Ctrl+C to stop.")

	<-ctx.Done()

	fmt.Println("Node stopped.")
	return nil
}
