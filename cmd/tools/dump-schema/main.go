// cmd/tools/dump-schema/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"db-agent/internal/common/config"
	"db-agent/internal/common/database"
	"db-agent/internal/common/logger"
	describeschema "db-agent/internal/tasks/data-access/describe-schema"
)

type schemaLoggerAdapter struct{ logger.Logger }

func (a *schemaLoggerAdapter) With(fields map[string]interface{}) describeschema.Logger {
	return &schemaLoggerAdapter{a.Logger.With(fields)}
}

// Prints the live public schema in the exact form the interpretation prompt
// receives it. Handy when debugging why the model misreads a table.
func main() {
	timeout := flag.Duration("timeout", 15*time.Second, "Query timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Fprintln(os.Stderr, "postgres open failed:", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := pg.Ping(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "postgres ping failed:", err)
		os.Exit(1)
	}

	handler := describeschema.NewHandler(
		&describeschema.Config{Timeout: *timeout},
		pg.DB,
		&schemaLoggerAdapter{logger.NewNoOpLogger()},
	)

	output, err := handler.Execute(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "describe schema failed:", err)
		os.Exit(1)
	}

	fmt.Println(output.PromptBlock)
}
