// batch-analyze runs the LLM analysis for ideas that have none yet.
//
// Ideas are analyzed one at a time with a pause between them. A failed idea
// is reported and the batch continues.
//
// Usage: go run ./scripts/batch-analyze
//
// Configuration: config.yaml or environment variables, as for the server.
//
// Flags:
//
//	-limit   Maximum number of ideas to analyze (default: analysis.batch_limit)
//	-delay   Pause between ideas (default: analysis.batch_delay)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/config"
	"github.com/ekaya-inc/upstart-engine/pkg/database"
	"github.com/ekaya-inc/upstart-engine/pkg/llm"
	"github.com/ekaya-inc/upstart-engine/pkg/repositories"
	"github.com/ekaya-inc/upstart-engine/pkg/services"
)

func main() {
	cfg, err := config.Load("batch-analyze")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	limit := flag.Int("limit", cfg.Analysis.BatchLimit, "Maximum number of ideas to analyze")
	delay := flag.Duration("delay", cfg.Analysis.BatchDelay, "Pause between ideas")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, database.ConfigFrom(&cfg.Database), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	llmClient, err := llm.NewClientFromConfig(cfg.LLM, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM client: %v\n", err)
		os.Exit(1)
	}

	scopedCtx, cleanup, err := database.NewScopeProvider(db).WithScope(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to acquire connection: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	analysisService := services.NewAnalysisService(
		repositories.NewIdeaRepository(),
		repositories.NewAnalysisRepository(),
		repositories.NewKeywordRepository(),
		repositories.NewCommunitySignalRepository(),
		llmClient,
		services.AnalysisServiceConfig{
			CacheWindow: cfg.Analysis.CacheWindow,
			Temperature: cfg.LLM.Temperature,
		},
		logger,
	)

	report, err := analysisService.BatchAnalyze(scopedCtx, *limit, *delay)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch analysis failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	for _, item := range report.Items {
		if item.Error != "" {
			fmt.Printf("  FAIL %s: %s\n", item.Title, item.Error)
			continue
		}
		fmt.Printf("  OK   %s (opportunity %d/10)\n", item.Title, item.Score)
	}
	fmt.Printf("\nAnalyzed %d ideas: %d succeeded, %d failed\n", len(report.Items), report.Succeeded, report.Failed)
}
