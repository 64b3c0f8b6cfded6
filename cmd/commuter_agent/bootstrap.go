package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jonathan/commuter-advisor/internal/advisor"
	"github.com/jonathan/commuter-advisor/internal/config"
	"github.com/jonathan/commuter-advisor/internal/crowding"
	"github.com/jonathan/commuter-advisor/internal/insights"
	"github.com/jonathan/commuter-advisor/internal/llm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// loadConfig resolves the configuration for a command. Precedence, highest
// first: flags (applied by the caller), config file, environment, defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		logger.Debug("loaded config", zap.String("path", configPath))
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg = cfg.MergeWithDefaults(config.Defaults())
	return cfg, nil
}

// appData is the reference data the advisor grounds its replies in
type appData struct {
	// Summary is nil when no survey export was found.
	Summary  *insights.Summary
	Crowding crowding.Table
}

// loadData reads the survey export and the crowding table concurrently.
// A missing survey export is not an error; the advisor then says it has no
// survey data. Without a crowding file the simulated table is used.
func loadData(ctx context.Context, cfg config.Config) (*appData, error) {
	var (
		data appData
		mu   sync.Mutex
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		if cfg.SurveyCSV == "" {
			return nil
		}
		summary, err := insights.Load(cfg.SurveyCSV)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("survey export not found, continuing without survey data",
				zap.String("path", cfg.SurveyCSV))
			return nil
		}
		if err != nil {
			return err
		}
		mu.Lock()
		data.Summary = summary
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		table := crowding.Default()
		if cfg.CrowdingFile != "" {
			loaded, err := crowding.LoadFile(cfg.CrowdingFile)
			if err != nil {
				return err
			}
			table = loaded
		}
		mu.Lock()
		data.Crowding = table
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("reference data loaded",
		zap.Bool("survey", data.Summary != nil),
		zap.Int("lines", len(data.Crowding)))
	return &data, nil
}

// llmConfig builds the model configuration from cfg
func llmConfig(cfg config.Config) *llm.Config {
	lc := llm.DefaultConfig()
	if cfg.Model != "" {
		lc = lc.WithModel(llm.TierStandard, cfg.Model)
	}
	if cfg.LiteModel != "" {
		lc = lc.WithModel(llm.TierLite, cfg.LiteModel)
	}
	if cfg.Temperature != 0 {
		lc.Temperature = cfg.Temperature
	}
	if cfg.RetryAttempts != 0 {
		lc.Retry.MaxAttempts = cfg.RetryAttempts
	}
	return lc
}

// newAdvisor connects to the model and returns an advisor over data.
// The caller must Close the returned client.
func newAdvisor(ctx context.Context, cfg config.Config, data *appData) (*advisor.Advisor, llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable or api_key config value is required")
	}

	client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	adv := advisor.New(client, advisor.Options{
		SurveySummary: data.Summary.Text(),
		Crowding:      data.Crowding,
		Logger:        logger,
	})
	return adv, client, nil
}
