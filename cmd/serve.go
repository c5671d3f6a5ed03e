package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dailymcp/daily/api"
	"github.com/dailymcp/daily/internal/config"
	"github.com/dailymcp/daily/internal/log"
	"github.com/dailymcp/daily/internal/provider"
	"github.com/dailymcp/daily/internal/tools"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP REST API server.

Endpoints:
  GET  /health            liveness probe
  GET  /ready             readiness probe with circuit states
  GET  /api/tools         tool catalog with schemas
  POST /api/tools/{name}  invoke a tool`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// runServe initializes and starts the HTTP API server.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry, dispatcher, err := buildTools(cfg, logger)
	if err != nil {
		return err
	}

	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	logger.Info("starting HTTP API server", "version", AppVersion, "addr", addr)
	server := api.NewServer(registry, dispatcher, cfg.RateLimit, logger)
	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	logger.Info("HTTP server shut down gracefully")
	return nil
}

// buildTools constructs the registry and dispatcher shared by both servers.
func buildTools(cfg *config.Config, logger log.Logger) (*tools.Registry, *tools.Dispatcher, error) {
	registry := tools.NewRegistry()
	if err := provider.Register(registry, cfg, logger); err != nil {
		return nil, nil, fmt.Errorf("registering tools: %w", err)
	}
	return registry, tools.NewDispatcher(registry, logger), nil
}

// newLogger builds the process logger from config. The MCP command must log
// to stderr: stdout carries the protocol stream.
func newLogger(cfg *config.Config) log.Logger {
	return log.NewWithWriter(os.Stderr, log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
}
