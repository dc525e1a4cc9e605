package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-roast/internal/api"
	"go-roast/internal/config"
	"go-roast/internal/fetch"
	"go-roast/internal/llm"
	"go-roast/internal/logger"
	"go-roast/internal/roast"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred log sync always happens.
func run() error {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer log.Sync()

	fetcher := fetch.NewClient(fetch.OptionsFromConfig(cfg.Fetch), log)

	// A missing key keeps the server up; the roast endpoint then answers 500.
	var completer roast.Completer
	client, err := llm.NewClient(llm.OptionsFromConfig(cfg.OpenAI), log)
	switch {
	case errors.Is(err, llm.ErrAPIKeyMissing):
		log.Warn("OPENAI_API_KEY not set, roast endpoint will report a configuration error")
	case err != nil:
		log.Error("completion client init failed", zap.Error(err))
		return err
	default:
		completer = client
		log.Info("completion client ready",
			zap.String("model", client.Model()),
			zap.Bool("breaker", client.Breaker() != nil))
	}

	svc := roast.NewService(fetcher, completer, roast.NewFallbackScorer(nil), log)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.SetupRouter(cfg, svc, log)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", zap.String("addr", addr), zap.String("subpath", cfg.Server.Subpath))
	if err := r.Run(addr); err != nil {
		log.Error("server error", zap.Error(err))
		return err
	}
	return nil
}
