// cmd/agent/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"db-agent/internal/common/config"
	"db-agent/internal/common/database"
	apperrors "db-agent/internal/common/errors"
	"db-agent/internal/common/genai"
	"db-agent/internal/common/httpclient"
	"db-agent/internal/common/logger"
	"db-agent/internal/common/observability"

	dr "db-agent/internal/tasks/conversation/dispatch-request"
	ds "db-agent/internal/tasks/data-access/describe-schema"
	es "db-agent/internal/tasks/data-access/execute-sql"
	to "db-agent/internal/tasks/data-access/table-ops"
	ea "db-agent/internal/tasks/media/extract-audio"
	fr "db-agent/internal/tasks/media/fetch-resource"
	rr "db-agent/internal/tasks/media/read-receipt"
	sa "db-agent/internal/tasks/media/summarize-audio"
)

// Adapters bridging logger.Logger to each task package's local Logger
// interface (the With return types differ).

type dispatchLoggerAdapter struct{ logger.Logger }

func (a *dispatchLoggerAdapter) With(fields map[string]interface{}) dr.Logger {
	return &dispatchLoggerAdapter{a.Logger.With(fields)}
}

type describeSchemaLoggerAdapter struct{ logger.Logger }

func (a *describeSchemaLoggerAdapter) With(fields map[string]interface{}) ds.Logger {
	return &describeSchemaLoggerAdapter{a.Logger.With(fields)}
}

type executeSQLLoggerAdapter struct{ logger.Logger }

func (a *executeSQLLoggerAdapter) With(fields map[string]interface{}) es.Logger {
	return &executeSQLLoggerAdapter{a.Logger.With(fields)}
}

type tableOpsLoggerAdapter struct{ logger.Logger }

func (a *tableOpsLoggerAdapter) With(fields map[string]interface{}) to.Logger {
	return &tableOpsLoggerAdapter{a.Logger.With(fields)}
}

type fetchResourceLoggerAdapter struct{ logger.Logger }

func (a *fetchResourceLoggerAdapter) With(fields map[string]interface{}) fr.Logger {
	return &fetchResourceLoggerAdapter{a.Logger.With(fields)}
}

type extractAudioLoggerAdapter struct{ logger.Logger }

func (a *extractAudioLoggerAdapter) With(fields map[string]interface{}) ea.Logger {
	return &extractAudioLoggerAdapter{a.Logger.With(fields)}
}

type summarizeAudioLoggerAdapter struct{ logger.Logger }

func (a *summarizeAudioLoggerAdapter) With(fields map[string]interface{}) sa.Logger {
	return &summarizeAudioLoggerAdapter{a.Logger.With(fields)}
}

type readReceiptLoggerAdapter struct{ logger.Logger }

func (a *readReceiptLoggerAdapter) With(fields map[string]interface{}) rr.Logger {
	return &readReceiptLoggerAdapter{a.Logger.With(fields)}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting db-agent...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL (fail fast, no retry loop) ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres open failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Hosted-Model Gateway ---
	gateway := genai.NewClient(
		cfg.APIs.GenAI.BaseURL,
		cfg.APIs.GenAI.APIKey,
		cfg.APIs.GenAI.Model,
		config.GetDuration(cfg.APIs.GenAI.Timeout),
		log,
	)

	httpClient := httpclient.NewClient(config.GetDuration(cfg.APIs.GenAI.Timeout))

	// --- Build Task Handlers ---
	schemaHandler := ds.NewHandler(
		&ds.Config{Timeout: config.GetDuration(config.GetTaskConfig(cfg, ds.TaskType).Timeout)},
		pg.DB, &describeSchemaLoggerAdapter{log},
	)

	sqlHandler := es.NewHandler(
		&es.Config{Timeout: config.GetDuration(config.GetTaskConfig(cfg, es.TaskType).Timeout)},
		pg.DB, &executeSQLLoggerAdapter{log},
	)

	tableHandler := to.NewHandler(
		&to.Config{Timeout: config.GetDuration(config.GetTaskConfig(cfg, to.TaskType).Timeout)},
		pg.DB, &tableOpsLoggerAdapter{log},
	)

	fetcher := fr.NewHandler(
		&fr.Config{
			StorageBaseURL: cfg.Storage.BaseURL,
			Timeout:        config.GetDuration(config.GetTaskConfig(cfg, fr.TaskType).Timeout),
		},
		httpClient, &fetchResourceLoggerAdapter{log},
	)

	// The acquirer pulls a full release archive, which outlives the model
	// client's timeout, so it gets its own client scoped to the task timeout.
	extractTimeout := config.GetDuration(config.GetTaskConfig(cfg, ea.TaskType).Timeout)
	downloadClient := httpclient.NewClient(extractTimeout)

	extractor := ea.NewHandler(
		&ea.Config{
			ToolPath:      cfg.Media.ToolPath,
			ToolDir:       cfg.Media.ToolDir,
			AcquirePolicy: cfg.Media.AcquirePolicy,
			DownloadURL:   cfg.Media.DownloadURL,
			Timeout:       extractTimeout,
		},
		ea.ExecRunner{}, ea.NewZipAcquirer(downloadClient), &extractAudioLoggerAdapter{log},
	)

	audioPipeline := sa.NewHandler(
		&sa.Config{Timeout: config.GetDuration(config.GetTaskConfig(cfg, sa.TaskType).Timeout)},
		fetcher, extractor, gateway, &summarizeAudioLoggerAdapter{log},
	)

	receiptConfig := rr.DefaultConfig()
	receiptConfig.Instruction = cfg.Media.ReceiptInstruction
	receiptConfig.Timeout = config.GetDuration(config.GetTaskConfig(cfg, rr.TaskType).Timeout)
	imagePipeline := rr.NewHandler(receiptConfig, fetcher, gateway, &readReceiptLoggerAdapter{log})

	dispatchConfig := dr.DefaultConfig()
	dispatchConfig.Timeout = config.GetDuration(config.GetTaskConfig(cfg, dr.TaskType).Timeout)
	dispatcher := dr.NewHandler(
		dispatchConfig,
		gateway, schemaHandler, sqlHandler, tableHandler, audioPipeline, imagePipeline,
		&dispatchLoggerAdapter{log},
	)

	zapLog.Info("All task handlers initialized")

	// --- Health/Metrics Server ---
	if cfg.App.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
			})
			mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if err := pg.Ping(r.Context()); err != nil {
					w.WriteHeader(http.StatusServiceUnavailable)
					json.NewEncoder(w).Encode(map[string]string{"status": "unready", "error": err.Error()})
					return
				}
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
			})
			mux.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.App.MetricsAddr))
			if err := http.ListenAndServe(cfg.App.MetricsAddr, mux); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	runLoop(ctx, cfg, dispatcher, apperrors.NewReporter(log), obs, zapLog)
}

// runLoop is the interactive read-dispatch-print loop. One request at a time;
// a failed turn is reported and the loop continues.
func runLoop(ctx context.Context, cfg *config.Config, dispatcher *dr.Handler, reporter *apperrors.Reporter, obs *observability.Observability, zapLog *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n💬 Ask a question about your database (or 'exit' to quit): ")
		if !scanner.Scan() {
			fmt.Println("\n👋 Exiting. Goodbye!")
			return
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if isExitKeyword(text, cfg.Agent.ExitKeywords) {
			fmt.Println("👋 Exiting. Goodbye!")
			return
		}

		turnID := uuid.New().String()
		turnStart := time.Now()
		turnCtx, cancel := context.WithTimeout(ctx, config.GetDuration(cfg.Agent.TurnTimeout))
		output, err := dispatcher.Execute(turnCtx, &dr.Input{Text: text})
		cancel()

		status := "success"
		if err != nil {
			status = "error"
		}
		obs.RecordTurnProcessed(ctx, status)
		obs.RecordTurnDuration(ctx, time.Since(turnStart), status)

		if err != nil {
			fmt.Println("\n📊 Response:")
			fmt.Println(reporter.Report(turnID, err))
			continue
		}

		zapLog.Debug("turn completed",
			zap.String("turnId", turnID),
			zap.String("kind", string(output.Kind)),
			zap.Int("writes", output.WriteCount),
		)

		fmt.Println("\n📊 Response:")
		fmt.Println(output.Message)
	}
}

func isExitKeyword(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.EqualFold(text, keyword) {
			return true
		}
	}
	return false
}
