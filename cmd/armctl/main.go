// armctl - Command-line interface for inspecting an ARM node's storage
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/anoma/arm-go/merklepath"
	"github.com/anoma/arm-go/resource"
	"github.com/anoma/arm-go/store"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("armctl v%s\n", version)

	case "help":
		printUsage()

	case "tree":
		if len(os.Args) < 3 {
			fmt.Println("Usage: armctl tree <subcommand>")
			fmt.Println("Subcommands: status")
			os.Exit(1)
		}
		cmdTree(os.Args[2:])

	case "nullifier":
		if len(os.Args) < 3 {
			fmt.Println("Usage: armctl nullifier <subcommand>")
			fmt.Println("Subcommands: check <hex>")
			os.Exit(1)
		}
		cmdNullifier(os.Args[2:])

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("armctl - Command-line interface for an ARM node")
	fmt.Println()
	fmt.Println("Usage: armctl <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  version     Show version information")
	fmt.Println("  help        Show this help message")
	fmt.Println("  tree        Commitment tree operations (status)")
	fmt.Println("  nullifier   Nullifier operations (check <hex>)")
	fmt.Println()
	fmt.Println("All commands connect directly to the node's PostgreSQL store using")
	fmt.Println("the ARMCTL_DB_* environment variables (host, port, user, password, name).")
}

func connectStore(ctx context.Context) (*store.PostgresStore, error) {
	cfg := store.DefaultConfig()
	if v := os.Getenv("ARMCTL_DB_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("ARMCTL_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ARMCTL_DB_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("ARMCTL_DB_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("ARMCTL_DB_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("ARMCTL_DB_NAME"); v != "" {
		cfg.Database = v
	}
	return store.NewPostgresStore(ctx, cfg)
}

func cmdTree(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "status":
		ctx := context.Background()
		db, err := connectStore(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		tree := merklepath.NewCommitmentTree(db)
		if err := tree.Initialize(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "initialize: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Commitment Tree Status:")
		fmt.Printf("  Root: %x\n", tree.Root())
		fmt.Printf("  Size: %d\n", tree.Size())
		fmt.Printf("  Depth: %d\n", merklepath.CommitmentTreeDepth)

	default:
		fmt.Printf("Unknown tree command: %s\n", args[0])
	}
}

func cmdNullifier(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "check":
		if len(args) < 2 {
			fmt.Println("Usage: armctl nullifier check <hex>")
			return
		}
		raw, err := hex.DecodeString(args[1])
		if err != nil || len(raw) != resource.DigestSize {
			fmt.Printf("invalid nullifier: expected %d hex-encoded bytes\n", resource.DigestSize)
			return
		}
		var nf resource.Digest
		copy(nf[:], raw)

		ctx := context.Background()
		db, err := connectStore(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		spent, err := db.HasNullifier(ctx, nf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "check nullifier: %v\n", err)
			os.Exit(1)
		}
		if spent {
			fmt.Printf("%s: spent\n", args[1])
		} else {
			fmt.Printf("%s: unspent\n", args[1])
		}

	default:
		fmt.Printf("Unknown nullifier command: %s\n", args[0])
	}
}
