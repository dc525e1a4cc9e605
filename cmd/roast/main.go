package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-roast/internal/config"
	"go-roast/internal/fetch"
	"go-roast/internal/llm"
	"go-roast/internal/logger"
	"go-roast/internal/roast"
)

func main() {
	// 1. Check Args
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/roast/main.go <URL>")
		fmt.Println("Example: go run cmd/roast/main.go https://example.com")
		os.Exit(1)
	}
	targetURL := os.Args[1]

	// 2. Load Config
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Log.Output = "stderr"
	log, err := logger.New(cfg.Log)
	if err != nil {
		log = zap.NewNop()
	}
	defer log.Sync()

	// 3. Setup pipeline
	client, err := llm.NewClient(llm.OptionsFromConfig(cfg.OpenAI), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		_ = log.Sync()
		os.Exit(1)
	}
	svc := roast.NewService(
		fetch.NewClient(fetch.OptionsFromConfig(cfg.Fetch), log),
		client,
		roast.NewFallbackScorer(nil),
		log,
	)

	// 4. Execute
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	ctx = logger.WithRequestID(ctx, uuid.NewString())

	result := svc.Roast(ctx, targetURL)

	// 5. Output
	out, _ := json.MarshalIndent(result.Response, "", "  ")
	fmt.Println(string(out))
	fmt.Printf("\noutcome=%s score_parsed=%v html_available=%v duration=%s\n",
		result.Outcome, result.ScoreParsed, result.HTMLAvailable, result.Duration)
}
