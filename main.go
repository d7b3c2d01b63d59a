/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/PivotLLM/clickup-mcp/config"
	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/logging"
	"github.com/PivotLLM/clickup-mcp/server"
)

// rootFlags are shared by every command
type rootFlags struct {
	configPath string
	apiKey     string
	debug      bool
}

func main() {
	// Top-level panic recovery
	defer func() {
		if rec := recover(); rec != nil {
			_, _ = fmt.Fprintf(os.Stderr, "FATAL PANIC: %v\n", rec)
			os.Exit(2)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var httpAddr string

	root := &cobra.Command{
		Use:   global.ProgramName,
		Short: "MCP server for ClickUp tasks, docs and time tracking",
		Long: `clickup-mcp exposes the ClickUp API as Model Context Protocol tools.

Tasks can be referenced by raw ID (86abc123), custom ID (gh-123),
hash form (#123, expanded with default_id_prefix) or task URL.

The API key is taken from --api-key, then ` + global.APIKeyEnvVar + `,
then the config file. Run "` + global.ProgramName + ` set-api-key" to store one.`,
		Version:       global.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(flags, httpAddr)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to configuration file (default: $"+global.ConfigEnvVar+" or ~/.config/"+global.ConfigDirName+"/"+global.DefaultConfigFileName+")")
	pf.StringVar(&flags.apiKey, "api-key", "", "ClickUp API key (overrides environment and config file)")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	root.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address (e.g. "+global.DefaultHTTPAddr+") instead of stdio")

	root.AddCommand(
		newServeCmd(flags),
		newCheckConfigCmd(flags),
		newTestConnectionCmd(flags),
		newSetAPIKeyCmd(flags),
		newVersionCmd(),
	)
	return root
}

// newConfig builds a Config from the shared flags
func (f *rootFlags) newConfig() *config.Config {
	var opts []config.Option
	if f.configPath != "" {
		opts = append(opts, config.WithConfigPath(f.configPath))
	}
	if f.apiKey != "" {
		opts = append(opts, config.WithAPIKey(f.apiKey))
	}
	if f.debug {
		opts = append(opts, config.WithLogLevel(global.LogLevelDebug))
	}
	return config.New(opts...)
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(flags, httpAddr)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address (e.g. "+global.DefaultHTTPAddr+") instead of stdio")
	return cmd
}

func runServe(flags *rootFlags, httpAddr string) error {
	cfg := flags.newConfig()

	// Load and validate configuration
	if err := cfg.Load(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Initialize logger with config path
	logger, err := logging.New(cfg.LogFile())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func(logger *logging.Logger) {
		// Ensure logs are flushed before exit
		_ = logger.Sync()
		_ = logger.Close()
	}(logger)

	// Set log level from config
	logger.SetLevel(cfg.LogLevel())

	// Announce startup
	logger.Infof("%s v%s starting", global.ProgramName, global.Version)
	logger.Infof("Configuration: %s (found=%t), API key from %s", cfg.ConfigPath(), cfg.FileFound(), cfg.APIKeySource())
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}
	if cfg.TeamID() == "" {
		logger.Warn("No default_team_id configured - the first workspace will be used and #123 references need a lookup")
	}

	if httpAddr == "" {
		httpAddr = cfg.HTTPAddr()
	}

	// Create and start server
	srv, err := server.New(cfg, logger, server.WithHTTPAddr(httpAddr))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Run the server
	return srv.Run()
}
