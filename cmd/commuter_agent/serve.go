package main

import (
	"context"
	"fmt"

	"github.com/jonathan/commuter-advisor/internal/advisor"
	"github.com/jonathan/commuter-advisor/internal/config"
	"github.com/jonathan/commuter-advisor/internal/db"
	"github.com/jonathan/commuter-advisor/internal/server"
	"github.com/jonathan/commuter-advisor/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort        int
	serveDatabaseURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the questionnaire, profile classification,
crowding data and the advice chat as REST endpoints.

Sessions are kept in PostgreSQL when DATABASE_URL (or --db-url) is set and in
memory otherwise. SESSION_TOKEN_SECRET must be set to sign session tokens.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDatabaseURL
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	data, err := loadData(ctx, cfg)
	if err != nil {
		return err
	}

	adv, client, err := newAdvisor(ctx, cfg, data)
	if err != nil {
		return err
	}
	onShutdown := []func(){func() { _ = client.Close() }}

	opts := session.ManagerOptions{
		Responder: adv,
		Fallback:  advisor.FallbackReply,
		Logger:    logger,
	}
	srvCfg := server.Config{
		Port:     cfg.Port,
		Tokens:   server.NewJWTService(jwtCfg),
		Crowding: data.Crowding,
		Logger:   logger,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		opts.Store = database
		srvCfg.Stats = database
		onShutdown = append(onShutdown, database.Close)
		logger.Info("persisting sessions in PostgreSQL")
	} else {
		logger.Warn("DATABASE_URL not set, sessions are kept in memory only")
	}

	srvCfg.Sessions = session.NewManager(opts)
	srvCfg.OnShutdown = onShutdown

	srv, err := server.New(srvCfg)
	if err != nil {
		for _, fn := range onShutdown {
			fn()
		}
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting commuter advisor API", zap.Int("port", cfg.Port))
	return srv.Start()
}
