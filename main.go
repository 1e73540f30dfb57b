package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"auto_slide_deck_generator/config"
	"auto_slide_deck_generator/deck"
	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/logging"
	"auto_slide_deck_generator/metrics"
	"auto_slide_deck_generator/render"
)

func main() {
	var cfgPath string
	root := &cobra.Command{
		Use:          "slidedeck",
		Short:        "Generate themed PowerPoint decks from a topic with an LLM",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default: ./config/config.{json,yaml} or ./config.*)")

	root.AddCommand(serveCMD(&cfgPath), generateCMD(&cfgPath), themesCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config and installs the process logger.
func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newService wires model client, retry policy, renderer and store. A model
// client that cannot be built leaves the service answering with the
// configuration error instead of failing startup.
func newService(cfg *config.Config, store deck.Store, logger *slog.Logger) (*deck.Service, error) {
	sizing, err := render.ParseSizing(cfg.Render.FontSizing, uint64(time.Now().UnixNano()))
	if err != nil {
		return nil, err
	}
	pool := render.NewPool(cfg.Render.Workers, render.NewRenderer(sizing, logger))
	opts := deck.Options{RejectEmptyOutline: cfg.Generation.RejectEmptyOutline, Logger: logger}

	llm, err := generator.NewLLM(cfg.LLM.Settings())
	if err != nil {
		var cfgErr *generator.ConfigurationError
		if !errors.As(err, &cfgErr) {
			cfgErr = &generator.ConfigurationError{Reason: "llm client init failed", Err: err}
		}
		logger.Warn("llm unavailable, generation disabled", "provider", cfg.LLM.Provider, "err", err)
		opts.Unavailable = cfgErr
		return deck.NewService(nil, pool, store, opts), nil
	}

	retrier := &generator.Retrier{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		BaseDelay:      cfg.Retry.BaseDelay,
		MaxDelay:       cfg.Retry.MaxDelay,
		AttemptTimeout: cfg.LLM.AttemptTimeout,
		Logger:         logger,
		Observe: func(o generator.Outcome) {
			metrics.RecordAttempt(o.Kind.String())
		},
	}
	if cfg.Retry.UpstreamRPS > 0 {
		retrier.Limiter = rate.NewLimiter(rate.Limit(cfg.Retry.UpstreamRPS), cfg.Retry.UpstreamBurst)
	}

	agent, err := generator.NewAgent(llm, retrier, cfg.Generation.Limits(), logger,
		generator.WithStrongEmphasisCleanup(cfg.Generation.StripBold))
	if err != nil {
		return nil, err
	}
	logger.Info("llm ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	return deck.NewService(agent, pool, store, opts), nil
}
