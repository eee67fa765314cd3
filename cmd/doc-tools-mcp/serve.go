package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/capability"
	"github.com/ironsheep/doc-tools-mcp/internal/server"
)

var noAI bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP protocol over stdin/stdout",
	Long: `Serve the MCP protocol over stdin/stdout. This is the default command.

The AI provider is built from the ai.* configuration. When it cannot be
built the server still starts and the document tools report a capability
error.`,
	RunE: runServe,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&noAI, "no-ai", false, "start without an AI provider")
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting doc-tools-mcp",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit))

	var ai capability.Capability
	if !noAI {
		c, err := capability.New(ctx, cfg.AI, cfg.OCR, logger)
		if err != nil {
			logger.Warn("AI capability unavailable, document tools are disabled", zap.Error(err))
		} else {
			ai = c
		}
	}

	srv := server.New(server.Options{
		Version:    Version,
		Capability: ai,
		Editor:     cfg.Editor,
		Export:     cfg.Export,
		Logger:     logger,
	})
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	return nil
}
