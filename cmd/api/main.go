package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/spendlens/receipt-review-backend/internal/cli"
	"github.com/spendlens/receipt-review-backend/internal/infrastructure/config"
)

func main() {
	// Best-effort .env load for local development
	_ = godotenv.Load()

	cfg := config.LoadOrEnv()
	flags := cli.ParseServeFlags()

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
