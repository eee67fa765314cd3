package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/config"
	"github.com/ironsheep/doc-tools-mcp/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	cfg         *config.Config
	logger      *zap.Logger
	closeLogger = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "doc-tools-mcp",
	Short: "MCP server for document images: edit, read and export",
	Long: `doc-tools-mcp edits scanned document images (rotate, colour adjust, crop),
reads them with an AI provider (OCR, tables, fields, handwriting) and exports
the results as PDF, Word or CSV.

Without a subcommand it serves the MCP protocol over stdin/stdout.
Configuration comes from doc-tools.yaml and DOCTOOLS_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogger()
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./doc-tools.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// setup loads configuration and builds the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
		if err := c.Validate(); err != nil {
			return err
		}
	}

	l, closeFn, err := logging.New(c.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	cfg, logger, closeLogger = c, l, closeFn
	return nil
}
