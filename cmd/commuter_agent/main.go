// Package main provides the commuter_agent CLI: the HTTP API server, an
// interactive terminal chat and one-shot classification tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool
	logger     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "commuter_agent",
	Short: "Commuter profile classification and travel advice",
	Long: `commuter_agent asks riders five questions about their travel habits,
classifies them into a commuter profile and gives crowding-aware travel
advice through a generative model.

Configuration can be loaded from a JSON or YAML file using --config.
Environment variables (GEMINI_API_KEY, DATABASE_URL, SESSION_TOKEN_SECRET)
fill in values the file leaves empty; command-line flags win over both.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// the interactive chat writes to the terminal; keep logs out of it
		if cmd.Name() == "chat" && !verbose {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
