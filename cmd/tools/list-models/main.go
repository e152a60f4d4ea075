// cmd/tools/list-models/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"db-agent/internal/common/config"
	"db-agent/internal/common/genai"
	"db-agent/internal/common/logger"
)

// Lists the hosted models available to the configured API key. Useful when a
// model name in config stops resolving.
func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "Request timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	client := genai.NewClient(
		cfg.APIs.GenAI.BaseURL,
		cfg.APIs.GenAI.APIKey,
		cfg.APIs.GenAI.Model,
		*timeout,
		logger.NewNoOpLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list models failed:", err)
		os.Exit(1)
	}

	fmt.Printf("Available models (%d):\n", len(models))
	for _, name := range models {
		fmt.Println(" -", name)
	}
}
